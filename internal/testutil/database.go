// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/Veraticus/expense-flow/internal/storage"
)

// TestDB wraps a migrated in-memory database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// Option customizes SetupTestDB.
type Option func(ctx context.Context, t *testing.T, s *storage.SQLiteStorage)

// WithCategories adds categories after the seeded defaults.
func WithCategories(names ...string) Option {
	return func(ctx context.Context, t *testing.T, s *storage.SQLiteStorage) {
		t.Helper()
		for _, name := range names {
			if _, err := s.CreateCategory(ctx, name, ""); err != nil {
				t.Fatalf("failed to seed category %q: %v", name, err)
			}
		}
	}
}

// WithArchived archives existing categories.
func WithArchived(names ...string) Option {
	return func(ctx context.Context, t *testing.T, s *storage.SQLiteStorage) {
		t.Helper()
		for _, name := range names {
			if err := s.ArchiveCategory(ctx, name); err != nil {
				t.Fatalf("failed to archive category %q: %v", name, err)
			}
		}
	}
}

// WithExpenses stores expenses before the test starts.
func WithExpenses(expenses ...model.CommittedExpense) Option {
	return func(ctx context.Context, t *testing.T, s *storage.SQLiteStorage) {
		t.Helper()
		for _, e := range expenses {
			if err := s.AddRecord(ctx, e); err != nil {
				t.Fatalf("failed to seed expense %q: %v", e.ID, err)
			}
		}
	}
}

// SetupTestDB creates a migrated in-memory database seeded with the default
// categories, then applies opts in order. The database is closed on cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.WithCategories("Pets"),
//		testutil.WithArchived("Healthcare"),
//	)
func SetupTestDB(t *testing.T, opts ...Option) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for _, opt := range opts {
		opt(ctx, t, store)
	}

	return &TestDB{Storage: store, t: t}
}

// Records returns every stored expense, newest first.
func (db *TestDB) Records() []model.CommittedExpense {
	db.t.Helper()
	records, err := db.Storage.GetRecords(context.Background(), storage.RecordFilter{})
	if err != nil {
		db.t.Fatalf("failed to load records: %v", err)
	}
	return records
}

// ActiveNames returns active category names in display order.
func (db *TestDB) ActiveNames() []string {
	db.t.Helper()
	cats, err := db.Storage.GetActiveCategories(context.Background())
	if err != nil {
		db.t.Fatalf("failed to load categories: %v", err)
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names
}
