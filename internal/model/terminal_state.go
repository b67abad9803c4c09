package model

import "fmt"

// TerminalState classifies how a walk ended.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and counting. MarshalText/UnmarshalText
// provide the string form for JSON fields and map keys, so serialized
// reports stay readable.
type TerminalState int

const (
	// StateSuccess indicates the walk reached the target article.
	StateSuccess TerminalState = iota

	// StateCycle indicates the walk revisited an article it had already
	// seen, so following first links can never escape.
	StateCycle

	// StateDeadEnd indicates the walk reached an article whose prose
	// contains no qualifying link to follow.
	StateDeadEnd

	// StateFetchError indicates a document fetch failed after the
	// transport's retries were exhausted.
	StateFetchError

	// StateStepLimit indicates the walk used up its whole step budget
	// without reaching any other terminal state.
	StateStepLimit
)

// TerminalStates lists all states in a stable order for reporting.
var TerminalStates = []TerminalState{
	StateSuccess,
	StateCycle,
	StateDeadEnd,
	StateFetchError,
	StateStepLimit,
}

// String returns a human-readable representation of the terminal state.
func (s TerminalState) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateCycle:
		return "cycle"
	case StateDeadEnd:
		return "dead_end"
	case StateFetchError:
		return "fetch_error"
	case StateStepLimit:
		return "step_limit"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so the state serializes
// as its name in JSON fields and as a map key.
func (s TerminalState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *TerminalState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "success":
		*s = StateSuccess
	case "cycle":
		*s = StateCycle
	case "dead_end":
		*s = StateDeadEnd
	case "fetch_error":
		*s = StateFetchError
	case "step_limit":
		*s = StateStepLimit
	default:
		return fmt.Errorf("unknown terminal state %q", string(text))
	}
	return nil
}
