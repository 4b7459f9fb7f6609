package importer

import "fmt"

// Summary reports the outcome of a committed import.
type Summary struct {
	Parsed        int
	Skipped       int
	AutoCommitted int
	Reviewed      int
	Committed     int
	Attempted     int
	Degraded      bool
}

// Partial reports whether some writes failed.
func (s Summary) Partial() bool {
	return s.Committed < s.Attempted
}

// Message is the one-line result shown to the user.
func (s Summary) Message() string {
	if s.Partial() {
		return fmt.Sprintf("Imported %d of %d expenses", s.Committed, s.Attempted)
	}
	if s.Committed == 1 {
		return "Imported 1 expense"
	}
	return fmt.Sprintf("Imported %d expenses", s.Committed)
}
