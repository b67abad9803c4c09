package model

import (
	"encoding/json"
	"testing"
)

// TestTerminalStateString verifies the human-readable state names.
func TestTerminalStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state TerminalState
		want  string
	}{
		{StateSuccess, "success"},
		{StateCycle, "cycle"},
		{StateDeadEnd, "dead_end"},
		{StateFetchError, "fetch_error"},
		{StateStepLimit, "step_limit"},
		{TerminalState(99), "unknown"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := tt.state.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestTerminalStateJSON verifies that states serialize by name, both as
// struct fields and as map keys, and parse back.
func TestTerminalStateJSON(t *testing.T) {
	t.Parallel()

	t.Run("field round trip", func(t *testing.T) {
		t.Parallel()

		outcome := WalkOutcome{RunID: 1, State: StateCycle}
		data, err := json.Marshal(outcome)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}

		var decoded WalkOutcome
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if decoded.State != StateCycle {
			t.Errorf("expected StateCycle, got %v", decoded.State)
		}
	})

	t.Run("map keys use names", func(t *testing.T) {
		t.Parallel()

		counts := map[TerminalState]int{StateDeadEnd: 3}
		data, err := json.Marshal(counts)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != `{"dead_end":3}` {
			t.Errorf("unexpected encoding: %s", data)
		}
	})

	t.Run("unknown name fails to parse", func(t *testing.T) {
		t.Parallel()

		var state TerminalState
		if err := state.UnmarshalText([]byte("exploded")); err == nil {
			t.Error("expected an error for unknown state name")
		}
	})
}
