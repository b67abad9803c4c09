package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wikiwalk/wikiwalk/internal/model"
)

// histogramBarWidth is the maximum bar length in the path-length chart.
const histogramBarWidth = 40

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with aligned columns and
// clear section formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables the per-walk outcome listing.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with one line per walk.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.ExperimentReport) (int, error) {
	summary := summaryFor(report)

	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeResults(&sb, summary)
	w.writeTerminals(&sb, summary)
	w.writeHistogram(&sb, summary)
	if w.verbose {
		w.writeOutcomes(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with experiment information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ExperimentReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      WIKIWALK EXPERIMENT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	edition := report.BaseURL
	if lang := editionLanguage(report.BaseURL); lang != "" {
		edition = fmt.Sprintf("%s (%s)", report.BaseURL, lang)
	}

	requested := report.RequestedWalks
	if requested == 0 {
		requested = report.CompletedWalks()
	}

	sb.WriteString(fmt.Sprintf("Target:         %s\n", report.Target.Title()))
	sb.WriteString(fmt.Sprintf("Edition:        %s\n", edition))
	sb.WriteString(fmt.Sprintf("Started:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	if d := report.Duration(); d > 0 {
		sb.WriteString(fmt.Sprintf("Duration:       %s\n", d.Round(time.Millisecond)))
	}
	sb.WriteString(fmt.Sprintf("Walks:          %d completed of %d requested\n", report.CompletedWalks(), requested))
	sb.WriteString(fmt.Sprintf("Max Steps:      %d\n", report.MaxSteps))
	sb.WriteString(fmt.Sprintf("Workers:        %d\n", report.Workers))

	if report.Interrupted {
		sb.WriteString("Status:         INTERRUPTED (partial results)\n")
	} else if report.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Status:         ERROR - %s\n", report.ErrorMessage))
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeResults writes the aggregate statistics section.
func (w *SimpleWriter) writeResults(sb *strings.Builder, summary *model.ExperimentSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RESULTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Success rate:  %.1f%% (%d of %d walks)\n",
		summary.SuccessRate*100, summary.Successes, summary.TotalWalks))
	sb.WriteString(fmt.Sprintf("  Mean pages:    %.2f\n", summary.MeanPages))
	sb.WriteString(fmt.Sprintf("  Median pages:  %.1f\n", summary.MedianPages))
	sb.WriteString("\n")

	for _, state := range model.TerminalStates {
		sb.WriteString(fmt.Sprintf("  %-13s %d\n", stateLabel(state)+":", summary.Count(state)))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  Cached links:  %d\n", summary.CacheSize))
	sb.WriteString("\n")
}

// writeTerminals writes the most frequent terminal pages of failed walks.
func (w *SimpleWriter) writeTerminals(sb *strings.Builder, summary *model.ExperimentSummary) {
	if len(summary.TopTerminals) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TOP TERMINAL PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.TopTerminals) == 0 {
		sb.WriteString("  No failed walks\n")
	} else {
		for _, terminal := range summary.TopTerminals {
			sb.WriteString(fmt.Sprintf("  %4dx %s\n", terminal.Count, terminal.Page.Title()))
		}
	}
	sb.WriteString("\n")
}

// writeHistogram writes the path-length distribution as an ASCII chart.
// Step-limited walks are excluded from the distribution by the summary.
func (w *SimpleWriter) writeHistogram(sb *strings.Builder, summary *model.ExperimentSummary) {
	if len(summary.Histogram) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PATH LENGTH DISTRIBUTION\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.Histogram) == 0 {
		sb.WriteString("  No completed walks\n\n")
		return
	}

	maxCount := 0
	for _, bucket := range summary.Histogram {
		if bucket.Count > maxCount {
			maxCount = bucket.Count
		}
	}

	for _, bucket := range summary.Histogram {
		width := bucket.Count * histogramBarWidth / maxCount
		if width == 0 {
			width = 1
		}
		sb.WriteString(fmt.Sprintf("  %4d | %-*s %d\n",
			bucket.Pages, histogramBarWidth, strings.Repeat("#", width), bucket.Count))
	}
	sb.WriteString("\n")
}

// writeOutcomes writes one line per walk, in run order.
func (w *SimpleWriter) writeOutcomes(sb *strings.Builder, report *model.ExperimentReport) {
	if len(report.Outcomes) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("WALK OUTCOMES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Outcomes) == 0 {
		sb.WriteString("  No walks completed\n")
	}
	for _, outcome := range report.Outcomes {
		sb.WriteString(fmt.Sprintf("  #%-5d %-12s %3d pages", outcome.RunID, outcome.State, outcome.PagesVisited))
		if !outcome.TerminalPage.IsZero() {
			sb.WriteString("  " + outcome.TerminalPage.Title())
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by wikiwalk\n")
	sb.WriteString("https://github.com/wikiwalk/wikiwalk\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// stateLabel renders a terminal state as an uppercase section label.
func stateLabel(state model.TerminalState) string {
	return strings.ToUpper(strings.ReplaceAll(state.String(), "_", " "))
}
