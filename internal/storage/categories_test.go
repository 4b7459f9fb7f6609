package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoryNames(categories []model.Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}
	return names
}

func TestCreateCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "Pets", "Food, vet and supplies for pets")
	require.NoError(t, err)
	assert.Equal(t, "Pets", cat.Name)
	assert.Equal(t, len(DefaultCategories), cat.Order)
	assert.NotZero(t, cat.ID)

	got, err := store.GetCategoryByName(ctx, "Pets")
	require.NoError(t, err)
	assert.Equal(t, "Food, vet and supplies for pets", got.Description)
	assert.Equal(t, cat.Order, got.Order)

	active, err := store.GetActiveCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pets", active[len(active)-1].Name)

	_, err = store.CreateCategory(ctx, "Pets", "")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestCreateCategory_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		wantErr error
		name    string
	}{
		{name: "", wantErr: ErrEmptyString},
		{name: "   ", wantErr: ErrEmptyString},
		{name: " Padded", wantErr: ErrInvalidCategory},
		{name: "Two\nLines", wantErr: ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateCategory(ctx, tt.name, "")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetCategoryByName_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetCategoryByName(context.Background(), "Nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.AddRecord(ctx, model.CommittedExpense{
		ID: "e1", Date: "2025-10-01", Amount: 9, Category: "Food", Description: "Bagel",
	}))

	updated, err := store.UpdateCategory(ctx, "Food", "Dining", "Eating out and groceries")
	require.NoError(t, err)
	assert.Equal(t, "Dining", updated.Name)
	assert.Equal(t, "Eating out and groceries", updated.Description)
	assert.Equal(t, 0, updated.Order)

	record, err := store.GetRecord(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Dining", record.Category)

	_, err = store.UpdateCategory(ctx, "Dining", "Shopping", "")
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, err = store.UpdateCategory(ctx, "Missing", "Whatever", "")
	assert.ErrorIs(t, err, common.ErrNotFound)

	same, err := store.UpdateCategory(ctx, "Dining", "", "New description only")
	require.NoError(t, err)
	assert.Equal(t, "Dining", same.Name)
	assert.Equal(t, "New description only", same.Description)
}

func TestArchiveAndRestoreCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.ArchiveCategory(ctx, "Healthcare"))

	active, err := store.GetActiveCategories(ctx)
	require.NoError(t, err)
	assert.NotContains(t, categoryNames(active), "Healthcare")

	all, err := store.GetAllCategories(ctx)
	require.NoError(t, err)
	assert.Contains(t, categoryNames(all), "Healthcare")

	archived, err := store.GetCategoryByName(ctx, "Healthcare")
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)

	require.NoError(t, store.RestoreCategory(ctx, "Healthcare"))
	active, err = store.GetActiveCategories(ctx)
	require.NoError(t, err)
	assert.Contains(t, categoryNames(active), "Healthcare")

	assert.ErrorIs(t, store.ArchiveCategory(ctx, "Missing"), common.ErrNotFound)
}

func TestReorderCategories(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.ReorderCategories(ctx, []string{"Other", "Food"}))

	active, err := store.GetActiveCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Other", "Food", "Transportation", "Entertainment", "Shopping", "Bills & Utilities", "Healthcare",
	}, categoryNames(active))

	assert.ErrorIs(t, store.ReorderCategories(ctx, []string{"Missing"}), common.ErrNotFound)
	assert.ErrorIs(t, store.ReorderCategories(ctx, []string{"Food", "Food"}), ErrInvalidCategory)
	assert.ErrorIs(t, store.ReorderCategories(ctx, nil), ErrEmptySlice)
}
