package importer

// State is the lifecycle position of an import session.
type State int

// Session states.
const (
	StateParsed State = iota
	StateCategorizing
	StateAutoReady
	StateAwaitingReview
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateCategorizing:
		return "categorizing"
	case StateAutoReady:
		return "auto_ready"
	case StateAwaitingReview:
		return "awaiting_review"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCommitted || s == StateFailed
}

var transitions = map[State][]State{
	StateParsed:         {StateCategorizing, StateAutoReady, StateAwaitingReview, StateFailed},
	StateCategorizing:   {StateAutoReady, StateAwaitingReview, StateFailed},
	StateAutoReady:      {StateCommitted, StateFailed},
	StateAwaitingReview: {StateAutoReady, StateCommitted, StateFailed},
}

func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
