// Package log provides compact logging for walk-heavy output, built on
// top of the standard slog package.
//
// This package extends slog to provide:
//   - Compaction of article URLs down to their title segment
//   - Truncation of oversized attribute values (snippets, link lists)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// A single experiment touches thousands of articles, and every one of
// them shows up in debug logs as a full URL. The CompactHandler rewrites
// those values so a log line reads
//
//	level=DEBUG msg="cache miss" page=Dark_matter
//
// instead of repeating the scheme and host on every attribute, and caps
// runaway values so one oversized attribute cannot flood the log.
//
// # Usage
//
//	// Create a compact logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("following link",
//	    "from", "https://en.wikipedia.org/wiki/Dark_matter",
//	    "to", "https://en.wikipedia.org/wiki/Matter",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
