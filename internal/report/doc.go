// Package report renders experiment reports in multiple output formats.
//
// The package provides four writers behind a single Writer interface:
//
//   - SimpleWriter: plain-text summary for terminal output
//   - CSVWriter: one row per walk, for spreadsheet analysis
//   - JSONWriter: machine-readable export of the full report
//   - MarkdownWriter: GitHub-flavored Markdown with charts
//
// Writers can be combined with MultiWriter to emit several formats
// from a single report in one call.
package report
