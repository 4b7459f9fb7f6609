// Package registry exposes the active category snapshot used by an import.
package registry

import (
	"context"
	"log/slog"
	"sort"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/model"
)

// CategorySource is the read side of the record store.
type CategorySource interface {
	GetActiveCategories(ctx context.Context) ([]model.Category, error)
}

// Adapter reads categories for the import pipeline.
type Adapter struct {
	source CategorySource
	logger *slog.Logger
}

// NewAdapter creates a registry adapter over the given source.
func NewAdapter(source CategorySource, logger *slog.Logger) *Adapter {
	return &Adapter{
		source: source,
		logger: common.OrDefault(logger),
	}
}

// ActiveCategories returns non-archived categories ordered by rank.
// Store failures yield an empty snapshot; categorization can still run and
// every row will simply need review.
func (a *Adapter) ActiveCategories(ctx context.Context) []model.Category {
	if a.source == nil {
		return []model.Category{}
	}

	categories, err := a.source.GetActiveCategories(ctx)
	if err != nil {
		a.logger.Warn("failed to load categories, continuing with none",
			"error", err)
		return []model.Category{}
	}

	return Active(categories)
}

// Active filters out archived categories and sorts the rest by Order, then Name.
// The input slice is not modified.
func Active(categories []model.Category) []model.Category {
	active := make([]model.Category, 0, len(categories))
	for _, cat := range categories {
		if cat.IsArchived {
			continue
		}
		active = append(active, cat)
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Order != active[j].Order {
			return active[i].Order < active[j].Order
		}
		return active[i].Name < active[j].Name
	})

	return active
}

// Names returns category names in slice order.
func Names(categories []model.Category) []string {
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
	}
	return names
}

// NameSet returns the set of category names.
func NameSet(categories []model.Category) map[string]struct{} {
	set := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		set[cat.Name] = struct{}{}
	}
	return set
}
