package wiki

import "errors"

// Transport errors.
// These errors are returned by the Client's fetch operations.
//
// Design decision: We define specific error types rather than wrapping all
// errors generically. This allows callers to handle different failure modes
// appropriately (e.g., a walk records a fetch-error outcome, while an
// invalid proxy address aborts startup).
var (
	// ErrInvalidBaseURL is returned when the base URL is not an absolute
	// http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http(s) URL")

	// ErrInvalidProxyAddress is returned when the proxy address format is
	// invalid. Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrRetriesExhausted is returned when a request kept failing
	// transiently until the retry policy gave up.
	ErrRetriesExhausted = errors.New("request failed after all retries")

	// ErrUnexpectedStatus is returned when the server answered with a
	// non-success status that the retry policy does not cover. The
	// response body is never parsed in that case, so transient error
	// pages cannot end up in the first-link cache.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)
