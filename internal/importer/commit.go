package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/csvimport"
	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/google/uuid"
)

// RecordWriter persists one expense record.
type RecordWriter interface {
	AddRecord(ctx context.Context, expense model.CommittedExpense) error
}

// Committer writes drafts to a RecordWriter one record at a time.
type Committer struct {
	writer RecordWriter
	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// CommitOption configures a Committer.
type CommitOption func(*Committer)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(fn func() string) CommitOption {
	return func(c *Committer) {
		c.newID = fn
	}
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(fn func() time.Time) CommitOption {
	return func(c *Committer) {
		c.now = fn
	}
}

// WithCommitLogger sets the logger used for per-record failures.
func WithCommitLogger(logger *slog.Logger) CommitOption {
	return func(c *Committer) {
		c.logger = logger
	}
}

// NewCommitter creates a committer for w.
func NewCommitter(w RecordWriter, opts ...CommitOption) *Committer {
	c := &Committer{
		writer: w,
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = common.OrDefault(c.logger)
	return c
}

// Commit writes every draft and returns how many succeeded. Failures do not
// stop the loop and nothing is rolled back; when any write fails the error is
// a *common.CommitError.
func (c *Committer) Commit(ctx context.Context, drafts []model.Draft) (int, error) {
	committed := 0
	var failures []error

	for _, draft := range drafts {
		if err := ctx.Err(); err != nil {
			failures = append(failures, fmt.Errorf("row %d: %w", draft.Index+1, err))
			continue
		}

		if strings.TrimSpace(draft.Category) == "" {
			failures = append(failures, fmt.Errorf("row %d: refusing to commit expense without a category", draft.Index+1))
			continue
		}

		record := model.CommittedExpense{
			ID:          c.newID(),
			Date:        normalizeDate(draft.Date),
			Amount:      draft.Amount,
			Category:    draft.Category,
			Description: draft.Description,
			CreatedAt:   c.now(),
		}

		if err := c.writer.AddRecord(ctx, record); err != nil {
			c.logger.Error("failed to save expense",
				"row", draft.Index+1,
				"description", draft.Description,
				"error", err)
			failures = append(failures, fmt.Errorf("row %d: %w", draft.Index+1, err))
			continue
		}
		committed++
	}

	if len(failures) > 0 {
		return committed, &common.CommitError{
			Committed: committed,
			Attempted: len(drafts),
			Failures:  failures,
		}
	}
	return committed, nil
}

// normalizeDate stores recognizable dates as YYYY-MM-DD and keeps anything
// else verbatim.
func normalizeDate(raw string) string {
	t, err := csvimport.ParseDate(raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02")
}
