package importer

import (
	"context"
	"errors"
	"sync"

	"github.com/Veraticus/expense-flow/internal/model"
)

var errDiskFull = errors.New("disk full")

// memoryStore is an in-memory Store. Descriptions listed in failOn are
// rejected by AddRecord.
type memoryStore struct {
	failOn     map[string]bool
	categories []model.Category
	records    []model.CommittedExpense
	mu         sync.Mutex
}

func newMemoryStore(categories ...model.Category) *memoryStore {
	return &memoryStore{categories: categories, failOn: make(map[string]bool)}
}

func (m *memoryStore) GetActiveCategories(_ context.Context) ([]model.Category, error) {
	return m.categories, nil
}

func (m *memoryStore) AddRecord(_ context.Context, expense model.CommittedExpense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[expense.Description] {
		return errDiskFull
	}
	m.records = append(m.records, expense)
	return nil
}

func (m *memoryStore) Records() []model.CommittedExpense {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.CommittedExpense(nil), m.records...)
}

// scriptedCategorizer returns fixed results and counts calls.
type scriptedCategorizer struct {
	err     error
	results map[string]model.CategorizedCandidate
	calls   int
}

func (s *scriptedCategorizer) Categorize(_ context.Context, candidates []model.CandidateExpense, _ []model.Category) ([]model.CategorizedCandidate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]model.CategorizedCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = model.CategorizedCandidate{CandidateExpense: c, Confidence: model.ConfidenceLow}
		if r, ok := s.results[c.Description]; ok {
			out[i].Category = r.Category
			out[i].Confidence = r.Confidence
		}
	}
	return out, nil
}

func suggest(category string, confidence model.Confidence) model.CategorizedCandidate {
	return model.CategorizedCandidate{
		CandidateExpense: model.CandidateExpense{Category: category},
		Confidence:       confidence,
	}
}

var defaultCategories = []model.Category{
	{Name: "Food", Order: 0},
	{Name: "Entertainment", Order: 1},
	{Name: "Transportation", Order: 2},
	{Name: "Retired", Order: 3, IsArchived: true},
}
