package model

import "time"

// CandidateExpense is a parsed, validated row awaiting categorization or commit.
type CandidateExpense struct {
	Date           string // Raw date string as it appeared in the file
	Description    string
	Category       string // Set only when the file supplied a known active category
	SourceCategory string // Raw category value that did not match any active category
	Index          int    // Stable position among surviving rows, assigned by the parser
	Line           int    // 1-based source line
	Amount         float64
}

// HasCategory reports whether the candidate already carries a category.
func (c CandidateExpense) HasCategory() bool {
	return c.Category != ""
}

// CategorizedCandidate is a candidate after the categorizer has run.
// An empty Category means the categorizer could not decide.
type CategorizedCandidate struct {
	CandidateExpense
	Confidence Confidence
}

// ReviewItem is a candidate that needs a human-supplied category before commit.
// Index correlates manual edits back to the original row.
type ReviewItem struct {
	CategorizedCandidate
}

// Draft is an expense ready to be committed, minus its identity and timestamp.
type Draft struct {
	Date        string
	Category    string
	Description string
	Source      DraftSource
	Index       int
	Amount      float64
}

// CommittedExpense is the persisted expense record.
type CommittedExpense struct {
	CreatedAt   time.Time
	ID          string
	Date        string
	Category    string
	Description string
	Amount      float64
}
