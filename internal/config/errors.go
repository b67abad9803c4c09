package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTargetArticle is returned when the target article name is empty.
	// Without a target there is no notion of walk success.
	ErrNoTargetArticle = errors.New("no target article: set --target or a target in the configuration file")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http(s) URL. Relative link resolution and seed selection both
	// depend on it.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http(s) URL")

	// ErrInvalidRuns is returned when the number of walks is not positive.
	// Zero walks would make the experiment a no-op.
	ErrInvalidRuns = errors.New("invalid number of runs: must be positive")

	// ErrInvalidMaxSteps is returned when the per-walk step budget is not
	// positive. Every walk needs at least the seed step.
	ErrInvalidMaxSteps = errors.New("invalid max steps: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	// A timeout of zero or negative would cause immediate fetch failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// One worker is the sequential baseline.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidFetchDelay is returned when the inter-request delay is
	// negative. Use 0 for no delay between fetches.
	ErrInvalidFetchDelay = errors.New("invalid fetch delay: must be non-negative")

	// ErrInvalidRetries is returned when the retry count is negative.
	// Zero retries means a single attempt per fetch.
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnknownEdition is returned when --edition names an edition the
	// configuration file does not define.
	ErrUnknownEdition = errors.New("unknown edition: not defined in the configuration file")
)
