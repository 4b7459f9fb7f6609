package cli

import (
	"testing"

	"github.com/Veraticus/expense-flow/internal/csvimport"
	"github.com/Veraticus/expense-flow/internal/importer"
	"github.com/Veraticus/expense-flow/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestRenderSummary(t *testing.T) {
	full := RenderSummary(&importer.Summary{Committed: 3, Attempted: 3, AutoCommitted: 2, Reviewed: 1})
	assert.Contains(t, full, "Imported 3 expenses")
	assert.Contains(t, full, "Import complete")

	partial := RenderSummary(&importer.Summary{Committed: 2, Attempted: 3})
	assert.Contains(t, partial, "Imported 2 of 3 expenses")
}

func TestRenderSkipped(t *testing.T) {
	assert.Empty(t, RenderSkipped(nil))

	out := RenderSkipped([]csvimport.RowIssue{{Line: 4, Reason: "invalid amount"}})
	assert.Contains(t, out, "Skipped 1 row(s)")
	assert.Contains(t, out, "line 4: invalid amount")
}

func TestRenderTables(t *testing.T) {
	cats := RenderCategories([]model.Category{
		{Name: "Food", Order: 0, Description: "Groceries"},
		{Name: "Old", Order: 1, IsArchived: true},
	})
	assert.Contains(t, cats, "Food")
	assert.Contains(t, cats, "archived")
	assert.Contains(t, cats, "Groceries")

	expenses := RenderExpenses([]model.CommittedExpense{
		{ID: "abc", Date: "2025-10-01", Amount: 45.5, Category: "Food", Description: "Whole Foods"},
	})
	assert.Contains(t, expenses, "45.50")
	assert.Contains(t, expenses, "Whole Foods")
	assert.Contains(t, expenses, "abc")
}
