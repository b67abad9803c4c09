package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/wikiwalk/wikiwalk/internal/model"
)

// csvHeader is the column layout of the per-walk CSV export.
var csvHeader = []string{"run_id", "reached_target", "pages_visited", "hit_max_steps", "terminal_page"}

// CSVWriter outputs one row per walk for spreadsheet analysis.
//
// Design decision: The CSV export carries raw per-walk outcomes rather
// than the aggregate summary. Aggregates are cheap to recompute in any
// spreadsheet, while the raw rows cannot be recovered from them. The
// terminal page column holds the article title, not the URL, because
// titles are what spreadsheet users group and filter on.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report's walk outcomes in CSV format, header first,
// one row per walk in run order.
func (w *CSVWriter) Write(report *model.ExperimentReport) (int, error) {
	var buf bytes.Buffer

	cw := csv.NewWriter(&buf)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}

	for _, outcome := range report.Outcomes {
		record := []string{
			strconv.Itoa(outcome.RunID),
			strconv.FormatBool(outcome.ReachedTarget),
			strconv.Itoa(outcome.PagesVisited),
			strconv.FormatBool(outcome.HitMaxSteps),
			outcome.TerminalPage.Title(),
		}
		if err := cw.Write(record); err != nil {
			return 0, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
