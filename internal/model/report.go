package model

import "time"

// ExperimentReport is the main experiment result structure. It carries the
// configuration echo, the per-walk outcomes, and the computed summary, and
// is what the report writers render and the database persists.
//
// Design decision: We use a single struct rather than separate
// config/result types to simplify serialization and history storage; a
// saved report is self-describing without joining it back to the
// configuration that produced it.
type ExperimentReport struct {
	// Target is the article that defines walk success.
	Target ArticleRef `json:"target"`

	// BaseURL is the encyclopedia edition the walks ran against.
	BaseURL string `json:"base_url"`

	// StartedAt is when the experiment began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last walk completed (or the run aborted).
	FinishedAt time.Time `json:"finished_at"`

	// RequestedWalks is the number of walks the experiment was asked for.
	// It equals len(Outcomes) unless the run was interrupted or aborted.
	RequestedWalks int `json:"requested_walks"`

	// MaxSteps is the per-walk step budget.
	MaxSteps int `json:"max_steps"`

	// Workers is how many walks ran concurrently (1 = sequential).
	Workers int `json:"workers"`

	// Interrupted is true when the run stopped early on a signal.
	Interrupted bool `json:"interrupted,omitempty"`

	// Outcomes holds one record per completed walk, in run order.
	Outcomes []WalkOutcome `json:"outcomes,omitempty"`

	// Summary holds the aggregate statistics over Outcomes.
	Summary *ExperimentSummary `json:"summary,omitempty"`

	// Error is any experiment-fatal error. Excluded from JSON.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewExperimentReport creates a report for a run against the given target.
func NewExperimentReport(target ArticleRef, baseURL string) *ExperimentReport {
	return &ExperimentReport{
		Target:    target,
		BaseURL:   baseURL,
		StartedAt: time.Now(),
	}
}

// Finalize records the collected outcomes, computes the summary, and
// stamps the finish time. cacheSize is the first-link store's entry count
// after the run.
func (r *ExperimentReport) Finalize(outcomes []WalkOutcome, cacheSize int64) {
	r.Outcomes = outcomes
	r.Summary = NewExperimentSummary(outcomes, cacheSize)
	r.FinishedAt = time.Now()
	if r.Error != nil {
		r.ErrorMessage = r.Error.Error()
	}
}

// CompletedWalks returns how many walks produced an outcome.
func (r *ExperimentReport) CompletedWalks() int {
	return len(r.Outcomes)
}

// Duration returns how long the experiment ran.
func (r *ExperimentReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
