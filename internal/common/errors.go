// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Import errors.
	ErrEmptyFile                = errors.New("file is empty or has no data rows")
	ErrNoValidRows              = errors.New("no valid rows found")
	ErrCategorizerUnavailable   = errors.New("categorizer unavailable")
	ErrIncompleteCategorization = errors.New("incomplete categorization")
	ErrUnknownCategory          = errors.New("unknown category")
	ErrStoreWriteFailure        = errors.New("store write failure")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ParseError is a fatal failure to read an import file.
type ParseError struct {
	Err    error
	Reason string
	Line   int
}

func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CommitError reports a partially failed commit. Records written before a
// failure are not rolled back.
type CommitError struct {
	Failures  []error
	Committed int
	Attempted int
}

func (e *CommitError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%v: committed %d of %d expenses: %s",
		ErrStoreWriteFailure, e.Committed, e.Attempted, strings.Join(parts, "; "))
}

func (e *CommitError) Unwrap() error {
	return ErrStoreWriteFailure
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the message to show for err.
// Parse failures get an actionable explanation.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}

	switch {
	case errors.Is(err, ErrEmptyFile):
		return "The file is empty. Add a header row and at least one expense, then upload it again."
	case errors.Is(err, ErrNoValidRows):
		return "No valid rows found. Each row needs a date, a positive amount and a description."
	case errors.Is(err, ErrIncompleteCategorization):
		return "Some expenses still need a category."
	case errors.Is(err, ErrCategorizerUnavailable):
		return "Automatic categorization is unavailable; please categorize these expenses manually."
	}
	return err.Error()
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
