package model

import "time"

// Category represents a user-defined expense category.
// Name is the identity key and is compared case-sensitively.
type Category struct {
	CreatedAt   time.Time
	Name        string
	Description string // Guides both humans and the categorizer
	ID          int
	Order       int // Display and priority rank, ascending
	IsArchived  bool
}

// IsActive reports whether the category can receive new expenses.
func (c Category) IsActive() bool {
	return !c.IsArchived
}
