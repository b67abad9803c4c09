// Package model defines the core data structures used throughout wikiwalk.
//
// This package contains the following main types:
//   - ArticleRef: Normalized reference to one encyclopedia article
//   - LinkResult: Memoized first-link result (a link or the explicit "no link")
//   - WalkOutcome: The immutable record produced by one walk
//   - ExperimentReport: The main experiment result structure
//   - ExperimentSummary: Aggregate statistics over one experiment
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (walker, database, experiment, report) need
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
