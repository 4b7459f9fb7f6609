package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basicCSV = "Date,Amount,Description\n2025-10-01,45.50,Whole Foods grocery shopping\n2025-10-02,12.99,Netflix subscription"

func sequentialIDs() CommitOption {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func fixedClock() CommitOption {
	return WithClock(func() time.Time {
		return time.Date(2025, 10, 5, 12, 0, 0, 0, time.UTC)
	})
}

func TestPipeline_NoCategorizerConfigured(t *testing.T) {
	store := newMemoryStore(defaultCategories...)
	p := NewPipeline(store, nil, nil, sequentialIDs())

	s, err := p.Start(context.Background(), basicCSV)
	require.NoError(t, err)

	assert.True(t, s.Degraded)
	assert.Equal(t, StateAwaitingReview, s.State())
	assert.Empty(t, s.Result.AutoCommit)
	require.Len(t, s.Result.NeedsReview, 2)
	for _, item := range s.Result.NeedsReview {
		assert.Empty(t, item.Category)
		assert.Equal(t, model.ConfidenceLow, item.Confidence)
	}
	assert.Len(t, s.Pending(), 2)

	_, err = p.Commit(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrIncompleteCategorization)
	assert.Equal(t, StateAwaitingReview, s.State())
	assert.Empty(t, store.Records())

	require.NoError(t, s.Resolve(0, "Food"))
	require.NoError(t, s.Resolve(1, "Entertainment"))
	assert.Empty(t, s.Pending())

	summary, err := p.Commit(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Committed)
	assert.Equal(t, 2, summary.Reviewed)
	assert.True(t, summary.Degraded)
	assert.Equal(t, "Imported 2 expenses", summary.Message())
	assert.Equal(t, StateCommitted, s.State())
}

func TestPipeline_UnavailableCategorizerDegrades(t *testing.T) {
	store := newMemoryStore(defaultCategories...)
	svc := &scriptedCategorizer{err: fmt.Errorf("dial: %w", common.ErrCategorizerUnavailable)}
	p := NewPipeline(store, svc, nil)

	s, err := p.Start(context.Background(), basicCSV)
	require.NoError(t, err)
	assert.True(t, s.Degraded)
	assert.Len(t, s.Result.NeedsReview, 2)
	assert.Equal(t, 1, svc.calls)
}

func TestPipeline_FullyAutomatic(t *testing.T) {
	store := newMemoryStore(defaultCategories...)
	svc := &scriptedCategorizer{results: map[string]model.CategorizedCandidate{
		"Whole Foods grocery shopping": suggest("Food", model.ConfidenceHigh),
		"Netflix subscription":         suggest("Entertainment", model.ConfidenceHigh),
	}}
	p := NewPipeline(store, svc, nil, sequentialIDs(), fixedClock())

	s, err := p.Start(context.Background(), basicCSV)
	require.NoError(t, err)
	assert.Equal(t, StateAutoReady, s.State())
	assert.True(t, s.Result.FullyAutomatic())

	summary, err := p.Commit(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 expenses", summary.Message())

	records := store.Records()
	require.Len(t, records, 2)
	assert.Equal(t, model.CommittedExpense{
		ID:          "id-1",
		Date:        "2025-10-01",
		Amount:      45.50,
		Category:    "Food",
		Description: "Whole Foods grocery shopping",
		CreatedAt:   time.Date(2025, 10, 5, 12, 0, 0, 0, time.UTC),
	}, records[0])
	assert.Equal(t, "Entertainment", records[1].Category)
}

func TestPipeline_AlreadyCategorizedSkipsOracle(t *testing.T) {
	store := newMemoryStore(defaultCategories...)
	svc := &scriptedCategorizer{}
	p := NewPipeline(store, svc, nil)

	s, err := p.Start(context.Background(), "Date,Category,Amount,Description\n2025-10-01,Food,45.50,Whole Foods")
	require.NoError(t, err)

	assert.Zero(t, svc.calls)
	assert.Equal(t, StateAutoReady, s.State())
	require.Len(t, s.Result.AutoCommit, 1)
	assert.Equal(t, model.SourceCSV, s.Result.AutoCommit[0].Source)

	summary, err := p.Commit(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "Imported 1 expense", summary.Message())
}

func TestPipeline_MixedConfidence(t *testing.T) {
	csv := "Date,Amount,Description\n" +
		"2025-10-01,45.50,Whole Foods\n" +
		"2025-10-02,9.99,Mystery charge\n" +
		"2025-10-03,30.00,Uber\n"
	store := newMemoryStore(defaultCategories...)
	svc := &scriptedCategorizer{results: map[string]model.CategorizedCandidate{
		"Whole Foods": suggest("Food", model.ConfidenceHigh),
		"Uber":        suggest("Transportation", model.ConfidenceLow),
	}}
	p := NewPipeline(store, svc, nil)

	s, err := p.Start(context.Background(), csv)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingReview, s.State())
	require.Len(t, s.Result.AutoCommit, 1)
	require.Len(t, s.Result.NeedsReview, 2)

	// The low-confidence suggestion stands unless overridden; only the empty row is pending.
	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Index)

	require.NoError(t, s.Resolve(1, "Entertainment"))

	summary, err := p.Commit(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AutoCommitted)
	assert.Equal(t, 2, summary.Reviewed)
	assert.Equal(t, 3, summary.Committed)

	records := store.Records()
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Food", "Entertainment", "Transportation"},
		[]string{records[0].Category, records[1].Category, records[2].Category})
}

func TestPipeline_ResolveValidation(t *testing.T) {
	store := newMemoryStore(defaultCategories...)
	svc := &scriptedCategorizer{results: map[string]model.CategorizedCandidate{
		"Whole Foods grocery shopping": suggest("Food", model.ConfidenceHigh),
	}}
	p := NewPipeline(store, svc, nil)

	s, err := p.Start(context.Background(), basicCSV)
	require.NoError(t, err)

	assert.Error(t, s.Resolve(0, "Food"), "row 0 auto-commits")
	assert.ErrorIs(t, s.Resolve(1, "Groceries"), common.ErrUnknownCategory)
	assert.ErrorIs(t, s.Resolve(1, "Retired"), common.ErrUnknownCategory)
	assert.NoError(t, s.Resolve(1, "Entertainment"))
	assert.Equal(t, "Entertainment", s.Resolutions()[1])
}

func TestPipeline_ParseFailures(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		raw     string
	}{
		{name: "empty file", raw: "", wantErr: common.ErrEmptyFile},
		{name: "header only", raw: "Date,Amount,Description\n", wantErr: common.ErrEmptyFile},
		{name: "no valid rows", raw: "Date,Amount,Description\nnot-a-date,abc,\n", wantErr: common.ErrNoValidRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &scriptedCategorizer{}
			p := NewPipeline(newMemoryStore(defaultCategories...), svc, nil)

			s, err := p.Start(context.Background(), tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			var parseErr *common.ParseError
			assert.ErrorAs(t, err, &parseErr)
			assert.Equal(t, StateFailed, s.State())
			assert.Zero(t, svc.calls)

			_, err = p.Commit(context.Background(), s)
			assert.Error(t, err)
		})
	}
}

func TestPipeline_PartialCommit(t *testing.T) {
	store := newMemoryStore(defaultCategories...)
	store.failOn["Netflix subscription"] = true
	svc := &scriptedCategorizer{results: map[string]model.CategorizedCandidate{
		"Whole Foods grocery shopping": suggest("Food", model.ConfidenceHigh),
		"Netflix subscription":         suggest("Entertainment", model.ConfidenceMedium),
	}}
	p := NewPipeline(store, svc, nil)

	s, err := p.Start(context.Background(), basicCSV)
	require.NoError(t, err)

	summary, err := p.Commit(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStoreWriteFailure)

	var commitErr *common.CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, 1, commitErr.Committed)
	assert.Equal(t, 2, commitErr.Attempted)

	require.NotNil(t, summary)
	assert.Equal(t, "Imported 1 of 2 expenses", summary.Message())
	assert.Len(t, store.Records(), 1)

	_, err = p.Commit(context.Background(), s)
	assert.Error(t, err, "a committed session cannot be committed again")
}

func TestPipeline_SkippedRowsAndUnknownCategory(t *testing.T) {
	csv := strings.Join([]string{
		"Date,Category,Amount,Description",
		"2025-10-01,Food,45.50,Whole Foods",
		"2025-10-02,Groceries,12.00,Corner store",
		"bad-date,Food,1.00,Broken",
		"2025-10-03,Retired,5.00,Old thing",
	}, "\n")
	store := newMemoryStore(defaultCategories...)
	p := NewPipeline(store, nil, nil)

	s, err := p.Start(context.Background(), csv)
	require.NoError(t, err)

	assert.Len(t, s.Skipped, 1)
	require.Len(t, s.Candidates, 3)
	require.Len(t, s.Result.NeedsReview, 2)
	assert.Equal(t, "Groceries", s.Result.NeedsReview[0].SourceCategory)
	assert.Equal(t, "Retired", s.Result.NeedsReview[1].SourceCategory)
}
