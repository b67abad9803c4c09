package model

// WalkOutcome is the immutable record produced by one walk. Exactly one
// outcome exists per walk; the aggregator and the report writers consume
// it but never modify it.
type WalkOutcome struct {
	// RunID identifies the walk within its experiment, 1-based and
	// assigned in run order.
	RunID int `json:"run_id"`

	// ReachedTarget is true only when the walk ended on the target
	// article.
	ReachedTarget bool `json:"reached_target"`

	// PagesVisited counts the distinct articles the walk entered, the
	// seed included. It is zero only when the seed fetch itself failed,
	// and never exceeds the configured step limit.
	PagesVisited int `json:"pages_visited"`

	// HitMaxSteps is true when the walk ended because it exhausted its
	// step budget.
	HitMaxSteps bool `json:"hit_max_steps"`

	// TerminalPage is the last article reached when the target was not.
	// It is empty for successful walks and for walks whose seed fetch
	// failed.
	TerminalPage ArticleRef `json:"terminal_page,omitempty"`

	// State classifies the ending.
	State TerminalState `json:"state"`
}

// Failed returns true for any outcome other than reaching the target.
func (o WalkOutcome) Failed() bool {
	return !o.ReachedTarget
}
