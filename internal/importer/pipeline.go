// Package importer drives a CSV import from raw text to committed expenses:
// parse, categorize what is missing, gate on confidence, collect human
// resolutions and commit.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/expense-flow/internal/categorize"
	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/csvimport"
	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/Veraticus/expense-flow/internal/reconcile"
	"github.com/Veraticus/expense-flow/internal/registry"
	"github.com/google/uuid"
)

// Store is the record store seen by an import.
type Store interface {
	registry.CategorySource
	RecordWriter
}

type statsCategorizer interface {
	CategorizeWithStats(ctx context.Context, candidates []model.CandidateExpense, categories []model.Category) ([]model.CategorizedCandidate, categorize.Stats, error)
}

// Pipeline runs imports against one store.
type Pipeline struct {
	categorizer categorize.Service
	registry    *registry.Adapter
	committer   *Committer
	logger      *slog.Logger
}

// NewPipeline creates a pipeline. svc may be nil when no categorizer is
// configured; rows without a category then all go to review.
func NewPipeline(store Store, svc categorize.Service, logger *slog.Logger, opts ...CommitOption) *Pipeline {
	logger = common.OrDefault(logger)
	return &Pipeline{
		categorizer: svc,
		registry:    registry.NewAdapter(store, logger),
		committer:   NewCommitter(store, append([]CommitOption{WithCommitLogger(logger)}, opts...)...),
		logger:      logger,
	}
}

// Session is one import in progress.
type Session struct {
	resolutions reconcile.Resolutions
	ID          string
	Candidates  []model.CandidateExpense
	Categories  []model.Category
	Skipped     []csvimport.RowIssue
	Result      reconcile.Result
	Stats       categorize.Stats
	state       State
	mu          sync.Mutex
	Degraded    bool
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) transition(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !canTransition(s.state, to) {
		return fmt.Errorf("invalid import state transition %s -> %s", s.state, to)
	}
	s.state = to
	return nil
}

// Resolve records a human-chosen category for a row under review.
func (s *Session) Resolve(index int, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingReview {
		return fmt.Errorf("import is %s, not awaiting review", s.state)
	}
	if !s.underReview(index) {
		return fmt.Errorf("row %d is not awaiting review", index+1)
	}
	if _, ok := registry.NameSet(s.Categories)[category]; !ok {
		return fmt.Errorf("%w: %q", common.ErrUnknownCategory, category)
	}

	s.resolutions[index] = category
	return nil
}

// Resolutions returns a copy of the recorded resolutions.
func (s *Session) Resolutions() reconcile.Resolutions {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(reconcile.Resolutions, len(s.resolutions))
	for k, v := range s.resolutions {
		out[k] = v
	}
	return out
}

// Pending lists review items that have neither a resolution nor a suggested
// category.
func (s *Session) Pending() []model.ReviewItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []model.ReviewItem
	for _, item := range s.Result.NeedsReview {
		if _, ok := s.resolutions[item.Index]; ok {
			continue
		}
		if item.Category == "" {
			pending = append(pending, item)
		}
	}
	return pending
}

func (s *Session) underReview(index int) bool {
	for _, item := range s.Result.NeedsReview {
		if item.Index == index {
			return true
		}
	}
	return false
}

// Start parses raw CSV text and categorizes it. A file that cannot be parsed
// returns the session in StateFailed together with a *common.ParseError. An
// unavailable categorizer is not an error: the session is marked Degraded and
// every uncategorized row goes to review.
func (p *Pipeline) Start(ctx context.Context, raw string) (*Session, error) {
	s := &Session{
		ID:          uuid.NewString(),
		state:       StateParsed,
		resolutions: make(reconcile.Resolutions),
	}

	s.Categories = p.registry.ActiveCategories(ctx)

	parsed, err := csvimport.NewParser(s.Categories, p.logger).ParseDetailed(raw)
	if err != nil {
		s.state = StateFailed
		common.LogError(err, "import parse failed", common.Fields{"session": s.ID})
		return s, err
	}
	s.Candidates = parsed.Candidates
	s.Skipped = parsed.Skipped

	var already, needs []model.CandidateExpense
	for _, c := range s.Candidates {
		if c.HasCategory() {
			already = append(already, c)
		} else {
			needs = append(needs, c)
		}
	}

	p.logger.Info("import parsed",
		"session", s.ID,
		"rows", len(s.Candidates),
		"skipped", len(s.Skipped),
		"categorized", len(already),
		"uncategorized", len(needs))

	var categorized []model.CategorizedCandidate
	if len(needs) > 0 {
		if err := s.transition(StateCategorizing); err != nil {
			return s, err
		}

		categorized, err = p.categorize(ctx, s, needs)
		if err != nil {
			s.mu.Lock()
			s.state = StateFailed
			s.mu.Unlock()
			return s, err
		}
	}

	s.Result = reconcile.Reconcile(already, categorized)

	next := StateAwaitingReview
	if s.Result.FullyAutomatic() {
		next = StateAutoReady
	}
	if err := s.transition(next); err != nil {
		return s, err
	}

	p.logger.Info("import reconciled",
		"session", s.ID,
		"auto_commit", len(s.Result.AutoCommit),
		"needs_review", len(s.Result.NeedsReview),
		"degraded", s.Degraded)

	return s, nil
}

func (p *Pipeline) categorize(ctx context.Context, s *Session, needs []model.CandidateExpense) ([]model.CategorizedCandidate, error) {
	var (
		categorized []model.CategorizedCandidate
		err         error
	)

	switch svc := p.categorizer.(type) {
	case nil:
		err = common.ErrCategorizerUnavailable
	case statsCategorizer:
		categorized, s.Stats, err = svc.CategorizeWithStats(ctx, needs, s.Categories)
	default:
		categorized, err = svc.Categorize(ctx, needs, s.Categories)
	}

	if errors.Is(err, common.ErrCategorizerUnavailable) {
		p.logger.Warn("categorizer unavailable, all uncategorized rows need review",
			"session", s.ID,
			"rows", len(needs),
			"error", err)
		s.Degraded = true
		return unresolved(needs), nil
	}
	if err != nil {
		return nil, fmt.Errorf("categorization failed: %w", err)
	}
	if len(categorized) != len(needs) {
		return nil, fmt.Errorf("categorizer returned %d results for %d rows", len(categorized), len(needs))
	}

	return categorized, nil
}

func unresolved(needs []model.CandidateExpense) []model.CategorizedCandidate {
	out := make([]model.CategorizedCandidate, len(needs))
	for i, c := range needs {
		out[i] = model.CategorizedCandidate{CandidateExpense: c, Confidence: model.ConfidenceLow}
	}
	return out
}

// Commit writes the session's expenses. A session awaiting review is
// finalized first; if any row still lacks a category nothing is written and
// the error wraps common.ErrIncompleteCategorization. A partial store failure
// returns both the summary and a *common.CommitError.
func (p *Pipeline) Commit(ctx context.Context, s *Session) (*Summary, error) {
	summary := &Summary{
		Parsed:   len(s.Candidates),
		Skipped:  len(s.Skipped),
		Degraded: s.Degraded,
	}

	var drafts []model.Draft
	switch state := s.State(); state {
	case StateAutoReady:
		drafts = s.Result.AutoCommit
		summary.AutoCommitted = len(drafts)
	case StateAwaitingReview:
		reviewed, err := reconcile.Finalize(s.Result.NeedsReview, s.Resolutions(), registry.NameSet(s.Categories))
		if err != nil {
			return nil, err
		}
		summary.AutoCommitted = len(s.Result.AutoCommit)
		summary.Reviewed = len(reviewed)
		drafts = reconcile.Merge(s.Result.AutoCommit, reviewed)
	default:
		return nil, fmt.Errorf("cannot commit import in state %s", state)
	}

	summary.Attempted = len(drafts)
	committed, err := p.committer.Commit(ctx, drafts)
	summary.Committed = committed

	if transErr := s.transition(StateCommitted); transErr != nil {
		return summary, transErr
	}

	p.logger.Info("import committed",
		"session", s.ID,
		"committed", committed,
		"attempted", len(drafts))

	return summary, err
}
