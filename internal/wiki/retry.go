package wiki

import (
	"net/http"
	"time"
)

// Default retry policy values, matching the transport behavior the
// experiment was calibrated with.
const (
	// DefaultMaxRetries is how many times a failed request is retried
	// after the initial attempt.
	DefaultMaxRetries = 5

	// DefaultInitialBackoff is the wait before the first retry.
	DefaultInitialBackoff = 1 * time.Second

	// DefaultMaxBackoff caps the exponential backoff growth.
	DefaultMaxBackoff = 30 * time.Second

	// DefaultBackoffMultiplier doubles the wait on each retry.
	DefaultBackoffMultiplier = 2.0
)

// RetryPolicy controls how transiently failed fetches are retried.
// It is an explicit value composed into the Client rather than hidden
// middleware, so tests and callers can see exactly what the transport
// will absorb.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt.
	// Zero means a single attempt per request.
	MaxRetries int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff growth.
	MaxBackoff time.Duration

	// BackoffMultiplier scales the backoff after each retry.
	BackoffMultiplier float64

	// RetryableStatuses are the HTTP status codes treated as transient.
	RetryableStatuses map[int]bool

	// RetryableMethods are the HTTP methods eligible for retry.
	// Only idempotent fetches belong here.
	RetryableMethods map[string]bool
}

// DefaultRetryPolicy returns the policy the experiment runs with:
// 5 retries, exponential backoff starting at 1s and doubling up to 30s,
// for GET requests answered with 429, 500, 502, 503, or 504 (or failing
// at the connection level).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
		RetryableStatuses: map[int]bool{
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusBadGateway:          true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
		RetryableMethods: map[string]bool{
			http.MethodGet: true,
		},
	}
}

// RetryableStatus reports whether the status code is treated as transient.
func (p RetryPolicy) RetryableStatus(code int) bool {
	return p.RetryableStatuses[code]
}

// RetryableMethod reports whether requests with this method may be
// retried at all.
func (p RetryPolicy) RetryableMethod(method string) bool {
	return p.RetryableMethods[method]
}

// NextBackoff returns the wait after the given backoff, scaled by the
// multiplier and capped at MaxBackoff.
func (p RetryPolicy) NextBackoff(current time.Duration) time.Duration {
	multiplier := p.BackoffMultiplier
	if multiplier <= 1 {
		return current
	}
	next := time.Duration(float64(current) * multiplier)
	if p.MaxBackoff > 0 && next > p.MaxBackoff {
		return p.MaxBackoff
	}
	return next
}
