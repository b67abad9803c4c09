package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wikiwalk/wikiwalk/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ExperimentReport) (int, error) {
	summary := summaryFor(report)

	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeResults(md, report, summary)
	w.writeTerminals(md, summary)
	w.writeHistogram(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with experiment information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ExperimentReport) {
	md.H1("Wikiwalk Experiment Report")
	md.PlainText("")

	edition := "`" + report.BaseURL + "`"
	if lang := editionLanguage(report.BaseURL); lang != "" {
		edition += " (" + lang + ")"
	}

	requested := report.RequestedWalks
	if requested == 0 {
		requested = report.CompletedWalks()
	}

	rows := [][]string{
		{"Target", articleLink(report.Target)},
		{"Edition", edition},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
	}
	if d := report.Duration(); d > 0 {
		rows = append(rows, []string{"Duration", d.Round(time.Millisecond).String()})
	}
	rows = append(rows,
		[]string{"Walks", fmt.Sprintf("%d completed of %d requested", report.CompletedWalks(), requested)},
		[]string{"Max Steps", strconv.Itoa(report.MaxSteps)},
		[]string{"Workers", strconv.Itoa(report.Workers)},
		[]string{"Status", w.getStatusText(report)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.ExperimentReport) string {
	if report.Interrupted {
		return "⚠️ Interrupted (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeResults writes the aggregate results section.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, report *model.ExperimentReport, summary *model.ExperimentSummary) {
	md.H2("Results")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Success rate", fmt.Sprintf("%.1f%% (%d of %d walks)", summary.SuccessRate*100, summary.Successes, summary.TotalWalks)},
			{"Mean pages visited", fmt.Sprintf("%.2f", summary.MeanPages)},
			{"Median pages visited", fmt.Sprintf("%.1f", summary.MedianPages)},
			{"Cached first links", strconv.FormatInt(summary.CacheSize, 10)},
		},
	})
	md.PlainText("")

	stateRows := make([][]string, 0, len(model.TerminalStates)+1)
	for _, state := range model.TerminalStates {
		stateRows = append(stateRows, []string{stateTitle(state), strconv.Itoa(summary.Count(state))})
	}
	stateRows = append(stateRows, []string{"**Total**", "**" + strconv.Itoa(summary.TotalWalks) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Walks"},
		Rows:   stateRows,
	})
	md.PlainText("")

	if summary.TotalWalks > 0 {
		w.writePieChart(md, summary)
	}

	w.writeAlert(md, report, summary)
}

// writePieChart writes a mermaid pie chart for the outcome distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary *model.ExperimentSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Walk Outcome Distribution"),
		piechart.WithShowData(true),
	)

	for _, state := range model.TerminalStates {
		if count := summary.Count(state); count > 0 {
			chart.LabelAndIntValue(stateTitle(state), uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the experiment outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ExperimentReport, summary *model.ExperimentSummary) {
	switch {
	case report.ErrorMessage != "":
		md.Cautionf("Experiment aborted: %s. Results cover %d completed walk(s).",
			report.ErrorMessage, summary.TotalWalks)
	case report.Interrupted:
		md.Warningf("Experiment interrupted after %d of %d walk(s); results are partial.",
			report.CompletedWalks(), report.RequestedWalks)
	case summary.TotalWalks > 0 && summary.Failures == 0:
		md.Tip(fmt.Sprintf("All %d walk(s) reached %s.", summary.TotalWalks, report.Target.Title()))
	default:
		md.Note(fmt.Sprintf("%d of %d walk(s) reached %s.",
			summary.Successes, summary.TotalWalks, report.Target.Title()))
	}
	md.PlainText("")
}

// writeTerminals writes the most frequent terminal pages of failed walks.
func (w *MarkdownWriter) writeTerminals(md *markdown.Markdown, summary *model.ExperimentSummary) {
	md.H2("Top Terminal Pages")
	md.PlainText("")

	if len(summary.TopTerminals) == 0 {
		md.PlainText("No failed walks.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.TopTerminals))
	for i, terminal := range summary.TopTerminals {
		rows[i] = []string{articleLink(terminal.Page), strconv.Itoa(terminal.Count)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Article", "Walks"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeHistogram writes the path-length distribution table.
func (w *MarkdownWriter) writeHistogram(md *markdown.Markdown, summary *model.ExperimentSummary) {
	md.H2("Path Length Distribution")
	md.PlainText("")

	if len(summary.Histogram) == 0 {
		md.PlainText("No completed walks.")
		md.PlainText("")
		return
	}

	md.PlainText("Walks that hit the step limit are excluded.")
	md.PlainText("")

	rows := make([][]string, len(summary.Histogram))
	for i, bucket := range summary.Histogram {
		rows[i] = []string{strconv.Itoa(bucket.Pages), strconv.Itoa(bucket.Count)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Pages Visited", "Walks"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wikiwalk](https://github.com/wikiwalk/wikiwalk)*")
}

// articleLink renders an article reference as a titled markdown link.
func articleLink(ref model.ArticleRef) string {
	if ref.IsZero() {
		return "-"
	}
	return fmt.Sprintf("[%s](%s)", ref.Title(), ref)
}

// stateTitle renders a terminal state as a title-case label.
func stateTitle(state model.TerminalState) string {
	return cases.Title(language.English).String(strings.ReplaceAll(state.String(), "_", " "))
}
