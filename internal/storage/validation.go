// Package storage persists categories and expense records in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/expense-flow/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrInvalidExpense   = errors.New("invalid expense")
	ErrInvalidCategory  = errors.New("invalid category")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpense checks the fields every stored expense must have.
func validateExpense(expense model.CommittedExpense) error {
	if strings.TrimSpace(expense.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidExpense)
	}
	if strings.TrimSpace(expense.Date) == "" {
		return fmt.Errorf("%w: missing date", ErrInvalidExpense)
	}
	if strings.TrimSpace(expense.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidExpense)
	}
	if strings.TrimSpace(expense.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidExpense)
	}
	if math.IsNaN(expense.Amount) || math.IsInf(expense.Amount, 0) || expense.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	return nil
}

// validateCategoryName rejects names that cannot round-trip through a CSV
// category column.
func validateCategoryName(name string) error {
	if err := validateString(name, "name"); err != nil {
		return err
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: name has surrounding whitespace", ErrInvalidCategory)
	}
	if strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("%w: name contains a line break", ErrInvalidCategory)
	}
	return nil
}

// validateFilter checks a record filter's date range.
func validateFilter(filter RecordFilter) error {
	if filter.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidExpense)
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return ErrInvalidDateRange
	}
	return nil
}
