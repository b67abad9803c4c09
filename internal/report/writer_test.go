package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/wikiwalk/wikiwalk/internal/model"
)

const testBaseURL = "https://en.wikipedia.org"

// createTestReport creates a finalized report with sample data for testing.
func createTestReport() *model.ExperimentReport {
	target := model.ArticleURL(testBaseURL, "Philosophy")
	report := model.NewExperimentReport(target, testBaseURL)
	report.RequestedWalks = 4
	report.MaxSteps = 150
	report.Workers = 2

	outcomes := []model.WalkOutcome{
		{RunID: 1, ReachedTarget: true, PagesVisited: 3, State: model.StateSuccess},
		{RunID: 2, ReachedTarget: true, PagesVisited: 5, State: model.StateSuccess},
		{RunID: 3, PagesVisited: 4, State: model.StateCycle,
			TerminalPage: model.ArticleURL(testBaseURL, "Logic")},
		{RunID: 4, PagesVisited: 2, State: model.StateDeadEnd,
			TerminalPage: model.ArticleURL(testBaseURL, "Dead end")},
	}
	report.Finalize(outcomes, 42)

	return report
}

// createEmptyReport creates a finalized report with no walk outcomes.
func createEmptyReport() *model.ExperimentReport {
	target := model.ArticleURL(testBaseURL, "Philosophy")
	report := model.NewExperimentReport(target, testBaseURL)
	report.RequestedWalks = 0
	report.MaxSteps = 150
	report.Workers = 1
	report.Finalize(nil, 0)

	return report
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		n, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes written, got %d", buf.Len(), n)
		}

		output := buf.String()
		if !strings.Contains(output, "WIKIWALK EXPERIMENT REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "Target:         Philosophy") {
			t.Error("expected output to contain target title")
		}
		if !strings.Contains(output, "(English)") {
			t.Error("expected output to annotate the edition language")
		}
		if !strings.Contains(output, "Status:         Complete") {
			t.Error("expected complete status")
		}
	})

	t.Run("writes results section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "RESULTS") {
			t.Error("expected output to contain results section")
		}
		if !strings.Contains(output, "50.0% (2 of 4 walks)") {
			t.Error("expected success rate in output")
		}
		if !strings.Contains(output, "Mean pages:    3.50") {
			t.Error("expected mean pages in output")
		}
		if !strings.Contains(output, "Median pages:  4.0") {
			t.Error("expected median pages in output")
		}
		if !strings.Contains(output, "SUCCESS:") {
			t.Error("expected SUCCESS count in output")
		}
		if !strings.Contains(output, "DEAD END:") {
			t.Error("expected DEAD END count in output")
		}
		if !strings.Contains(output, "Cached links:  42") {
			t.Error("expected cache size in output")
		}
	})

	t.Run("writes terminal pages and histogram", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "TOP TERMINAL PAGES") {
			t.Error("expected terminal pages section")
		}
		if !strings.Contains(output, "Logic") {
			t.Error("expected terminal page title in output")
		}
		if !strings.Contains(output, "Dead end") {
			t.Error("expected decoded terminal title in output")
		}
		if !strings.Contains(output, "PATH LENGTH DISTRIBUTION") {
			t.Error("expected histogram section")
		}
		if !strings.Contains(output, "#") {
			t.Error("expected histogram bars in output")
		}
	})

	t.Run("verbose mode lists each walk", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "WALK OUTCOMES") {
			t.Error("expected verbose output to contain walk outcomes section")
		}
		if !strings.Contains(output, "cycle") {
			t.Error("expected per-walk state in verbose output")
		}
	})

	t.Run("hides empty sections without showEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createEmptyReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "TOP TERMINAL PAGES") {
			t.Error("should not show terminal pages section for empty report")
		}
		if strings.Contains(output, "PATH LENGTH DISTRIBUTION") {
			t.Error("should not show histogram section for empty report")
		}
	})

	t.Run("shows empty sections with showEmpty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))
		report := createEmptyReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No failed walks") {
			t.Error("expected 'No failed walks' message")
		}
		if !strings.Contains(output, "No completed walks") {
			t.Error("expected 'No completed walks' message")
		}
	})

	t.Run("handles interrupted report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()
		report.Interrupted = true

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "INTERRUPTED") {
			t.Error("expected output to indicate interruption")
		}
	})

	t.Run("shows error in status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()
		report.ErrorMessage = "random endpoint unreachable"

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "ERROR") {
			t.Error("expected ERROR in status")
		}
		if !strings.Contains(output, "random endpoint unreachable") {
			t.Error("expected error message in output")
		}
	})

	t.Run("computes summary when report is not finalized", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		target := model.ArticleURL(testBaseURL, "Philosophy")
		report := model.NewExperimentReport(target, testBaseURL)
		report.Outcomes = []model.WalkOutcome{
			{RunID: 1, ReachedTarget: true, PagesVisited: 2, State: model.StateSuccess},
		}

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "100.0% (1 of 1 walks)") {
			t.Error("expected summary computed from outcomes")
		}
	})
}

// TestCSVWriter tests the per-walk CSV export.
func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and one row per walk", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewCSVWriter(&buf)
		report := createTestReport()

		n, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes written, got %d", buf.Len(), n)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 5 {
			t.Fatalf("expected 5 lines (header + 4 walks), got %d", len(lines))
		}

		want := "run_id,reached_target,pages_visited,hit_max_steps,terminal_page"
		if lines[0] != want {
			t.Errorf("expected header %q, got %q", want, lines[0])
		}
		if lines[1] != "1,true,3,false," {
			t.Errorf("unexpected first row: %q", lines[1])
		}
		if lines[3] != "3,false,4,false,Logic" {
			t.Errorf("unexpected cycle row: %q", lines[3])
		}
	})

	t.Run("uses article titles for terminal pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewCSVWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Dead end") {
			t.Error("expected terminal title with spaces, not underscores")
		}
		if strings.Contains(output, "/wiki/") {
			t.Error("expected titles, not URLs, in terminal column")
		}
	})

	t.Run("writes only header for empty report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewCSVWriter(&buf)
		report := createEmptyReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 1 {
			t.Errorf("expected header only, got %d lines", len(lines))
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.ExperimentReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		wantTarget := model.ArticleURL(testBaseURL, "Philosophy")
		if parsed.Target != wantTarget {
			t.Errorf("expected target %q, got %q", wantTarget, parsed.Target)
		}
		if parsed.Summary == nil || parsed.Summary.TotalWalks != 4 {
			t.Error("expected summary with 4 walks in JSON output")
		}
		if len(parsed.Outcomes) != 4 {
			t.Errorf("expected 4 outcomes, got %d", len(parsed.Outcomes))
		}
	})

	t.Run("serializes states by name", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, `"state":"dead_end"`) {
			t.Error("expected outcome state serialized by name")
		}
		if !strings.Contains(output, `"success":2`) {
			t.Error("expected state counts keyed by name")
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) > 1 {
			t.Errorf("expected compact output (1 line), got %d lines", len(lines))
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
	})
}

// TestWithIndent tests the WithIndent JSON option.
func TestWithIndent(t *testing.T) {
	t.Parallel()

	t.Run("uses custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent(">>", "\t"))
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, ">>") {
			t.Error("expected custom prefix '>>' in output")
		}
		if !strings.Contains(output, "\t") {
			t.Error("expected tab indentation in output")
		}
	})
}

// TestFullJSONWriter tests the full JSON writer with metadata.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes version in output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.0", WithPrettyPrint())
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed JSONReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Version != "1.2.0" {
			t.Errorf("expected version %q, got %q", "1.2.0", parsed.Version)
		}
		if parsed.Report == nil || parsed.Report.Summary == nil {
			t.Fatal("expected wrapped report with summary")
		}
		if parsed.Report.Summary.TotalWalks != 4 {
			t.Errorf("expected 4 walks in wrapped summary, got %d", parsed.Report.Summary.TotalWalks)
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Wikiwalk Experiment Report") {
			t.Error("expected output to contain H1 header")
		}
		if !strings.Contains(output, "[Philosophy](https://en.wikipedia.org/wiki/Philosophy)") {
			t.Error("expected target rendered as a link")
		}
		if !strings.Contains(output, "✅ Complete") {
			t.Error("expected complete status")
		}
	})

	t.Run("writes results tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Results") {
			t.Error("expected results header")
		}
		if !strings.Contains(output, "50.0% (2 of 4 walks)") {
			t.Error("expected success rate in output")
		}
		if !strings.Contains(output, "Dead End") {
			t.Error("expected title-case outcome label")
		}
		if !strings.Contains(output, "mermaid") {
			t.Error("expected mermaid chart block")
		}
		if !strings.Contains(output, "Walk Outcome Distribution") {
			t.Error("expected chart title")
		}
	})

	t.Run("writes terminal pages and histogram", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Top Terminal Pages") {
			t.Error("expected terminal pages header")
		}
		if !strings.Contains(output, "[Logic](https://en.wikipedia.org/wiki/Logic)") {
			t.Error("expected terminal page rendered as a link")
		}
		if !strings.Contains(output, "## Path Length Distribution") {
			t.Error("expected histogram header")
		}
	})

	t.Run("notes partial results when interrupted", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()
		report.Interrupted = true

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!WARNING]") {
			t.Error("expected WARNING alert for interrupted run")
		}
		if !strings.Contains(output, "results are partial") {
			t.Error("expected interruption alert in output")
		}
	})

	t.Run("notes abort error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()
		report.ErrorMessage = "cache unavailable"

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!CAUTION]") {
			t.Error("expected CAUTION alert for aborted run")
		}
		if !strings.Contains(output, "Experiment aborted: cache unavailable") {
			t.Error("expected abort alert in output")
		}
	})

	t.Run("handles empty report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createEmptyReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No failed walks.") {
			t.Error("expected empty terminal pages message")
		}
		if !strings.Contains(output, "No completed walks.") {
			t.Error("expected empty histogram message")
		}
	})
}

// TestMultiWriter tests writing to multiple outputs.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		w1 := NewSimpleWriter(&buf1)
		w2 := NewJSONWriter(&buf2)

		multi := NewMultiWriter(w1, w2)
		report := createTestReport()

		n, err := multi.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf1.Len()+buf2.Len() {
			t.Errorf("expected total %d bytes, got %d", buf1.Len()+buf2.Len(), n)
		}

		if buf1.Len() == 0 {
			t.Error("expected buf1 to have content")
		}
		if buf2.Len() == 0 {
			t.Error("expected buf2 to have content")
		}

		if strings.Contains(buf1.String(), "{") {
			t.Error("expected buf1 (simple) to not be JSON")
		}
		if !strings.Contains(buf2.String(), "{") {
			t.Error("expected buf2 (JSON) to contain JSON")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		multi := NewMultiWriter()
		report := createTestReport()

		n, err := multi.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes written for empty writers, got %d", n)
		}
	})
}

// TestEditionLanguage tests language detection from the base URL host.
func TestEditionLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{name: "english edition", baseURL: "https://en.wikipedia.org", want: "English"},
		{name: "german edition", baseURL: "https://de.wikipedia.org", want: "German"},
		{name: "french edition", baseURL: "https://fr.wikipedia.org", want: "French"},
		{name: "host without subdomain", baseURL: "http://localhost:8080", want: ""},
		{name: "non-language label", baseURL: "https://wikipedia.org", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := editionLanguage(tt.baseURL); got != tt.want {
				t.Errorf("editionLanguage(%q) = %q, want %q", tt.baseURL, got, tt.want)
			}
		})
	}
}
