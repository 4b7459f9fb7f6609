// Package reconcile merges CSV-categorized and machine-categorized expenses
// and decides which rows can be committed without a human.
package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/model"
)

// NeedsReview reports whether a categorized row must be confirmed by a human:
// its category is empty or its confidence is low.
func NeedsReview(c model.CategorizedCandidate) bool {
	return strings.TrimSpace(c.Category) == "" || !c.Confidence.Accepted()
}

// Result splits an import into rows ready to commit and rows awaiting review.
type Result struct {
	AutoCommit  []model.Draft
	NeedsReview []model.ReviewItem
}

// FullyAutomatic reports whether nothing needs review.
func (r Result) FullyAutomatic() bool {
	return len(r.NeedsReview) == 0
}

// Total is the number of rows covered by the result.
func (r Result) Total() int {
	return len(r.AutoCommit) + len(r.NeedsReview)
}

// Reconcile applies the confidence gate. Rows that arrived with a valid CSV
// category are trusted and always auto-commit. Every input lands in exactly
// one of the two lists; both lists are ordered by index.
func Reconcile(already []model.CandidateExpense, categorized []model.CategorizedCandidate) Result {
	result := Result{
		AutoCommit:  make([]model.Draft, 0, len(already)+len(categorized)),
		NeedsReview: make([]model.ReviewItem, 0),
	}

	for _, c := range already {
		result.AutoCommit = append(result.AutoCommit, draftFrom(c, c.Category, model.SourceCSV))
	}

	for _, c := range categorized {
		if NeedsReview(c) {
			result.NeedsReview = append(result.NeedsReview, model.ReviewItem{CategorizedCandidate: c})
			continue
		}
		result.AutoCommit = append(result.AutoCommit, draftFrom(c.CandidateExpense, c.Category, model.SourceAuto))
	}

	sortDrafts(result.AutoCommit)
	sort.SliceStable(result.NeedsReview, func(i, j int) bool {
		return result.NeedsReview[i].Index < result.NeedsReview[j].Index
	})

	return result
}

// Resolutions maps a review item's index to the category a human chose.
type Resolutions map[int]string

// Finalize applies resolutions to the review items. Items are matched by index
// only. Without a resolution an item keeps its suggested category, if any.
// When any item is still uncategorized no drafts are returned and the error
// wraps common.ErrIncompleteCategorization. A non-nil valid set rejects
// resolutions naming other categories with common.ErrUnknownCategory.
func Finalize(items []model.ReviewItem, res Resolutions, valid map[string]struct{}) ([]model.Draft, error) {
	drafts := make([]model.Draft, 0, len(items))
	var missing []int

	for _, item := range items {
		category := strings.TrimSpace(item.Category)
		source := model.SourceAuto

		if chosen, ok := res[item.Index]; ok && strings.TrimSpace(chosen) != "" {
			category = strings.TrimSpace(chosen)
			source = model.SourceManual
			if valid != nil {
				if _, known := valid[category]; !known {
					return nil, fmt.Errorf("%w: %q for row %d", common.ErrUnknownCategory, category, item.Index+1)
				}
			}
		}

		if category == "" {
			missing = append(missing, item.Index)
			continue
		}

		drafts = append(drafts, draftFrom(item.CandidateExpense, category, source))
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %d of %d rows still need a category (rows %s)",
			common.ErrIncompleteCategorization, len(missing), len(items), formatRows(missing))
	}

	sortDrafts(drafts)
	return drafts, nil
}

// Merge combines auto-committed and reviewed drafts in index order.
func Merge(auto, reviewed []model.Draft) []model.Draft {
	merged := make([]model.Draft, 0, len(auto)+len(reviewed))
	merged = append(merged, auto...)
	merged = append(merged, reviewed...)
	sortDrafts(merged)
	return merged
}

func draftFrom(c model.CandidateExpense, category string, source model.DraftSource) model.Draft {
	return model.Draft{
		Index:       c.Index,
		Date:        c.Date,
		Amount:      c.Amount,
		Category:    category,
		Description: c.Description,
		Source:      source,
	}
}

func sortDrafts(drafts []model.Draft) {
	sort.SliceStable(drafts, func(i, j int) bool {
		return drafts[i].Index < drafts[j].Index
	})
}

// formatRows renders 0-based indices as 1-based row numbers.
func formatRows(indices []int) string {
	rows := make([]string, len(indices))
	for i, idx := range indices {
		rows[i] = fmt.Sprint(idx + 1)
	}
	return strings.Join(rows, ", ")
}
