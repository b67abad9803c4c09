// Package experiment drives batches of first-link walks.
//
// The Driver runs N independent walks against a shared source and cache,
// sequentially by default or on a bounded worker pool. Individual walk
// failures are outcomes, not errors; only context cancellation and cache
// failures abort a run, and even then the outcomes collected so far are
// returned so partial results remain reportable.
package experiment
