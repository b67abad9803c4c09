package model

import (
	"testing"
)

// TestNewExperimentSummary verifies the aggregate statistics against a
// small hand-computed outcome set.
func TestNewExperimentSummary(t *testing.T) {
	t.Parallel()

	outcomes := []WalkOutcome{
		{RunID: 1, ReachedTarget: true, PagesVisited: 10, State: StateSuccess},
		{RunID: 2, ReachedTarget: true, PagesVisited: 20, State: StateSuccess},
		{RunID: 3, PagesVisited: 4, TerminalPage: "https://x/wiki/Loop", State: StateCycle},
		{RunID: 4, PagesVisited: 4, TerminalPage: "https://x/wiki/Loop", State: StateCycle},
		{RunID: 5, PagesVisited: 2, TerminalPage: "https://x/wiki/End", State: StateDeadEnd},
		{RunID: 6, PagesVisited: 150, HitMaxSteps: true, TerminalPage: "https://x/wiki/Deep", State: StateStepLimit},
	}

	summary := NewExperimentSummary(outcomes, 42)

	t.Run("totals", func(t *testing.T) {
		t.Parallel()
		if summary.TotalWalks != 6 {
			t.Errorf("expected 6 walks, got %d", summary.TotalWalks)
		}
		if summary.Successes != 2 {
			t.Errorf("expected 2 successes, got %d", summary.Successes)
		}
		if summary.Failures != 4 {
			t.Errorf("expected 4 failures, got %d", summary.Failures)
		}
		if summary.CacheSize != 42 {
			t.Errorf("expected cache size 42, got %d", summary.CacheSize)
		}
	})

	t.Run("success rate", func(t *testing.T) {
		t.Parallel()
		want := 2.0 / 6.0
		if summary.SuccessRate != want {
			t.Errorf("expected success rate %v, got %v", want, summary.SuccessRate)
		}
	})

	t.Run("mean pages over all walks", func(t *testing.T) {
		t.Parallel()
		want := float64(10+20+4+4+2+150) / 6.0
		if summary.MeanPages != want {
			t.Errorf("expected mean %v, got %v", want, summary.MeanPages)
		}
	})

	t.Run("median is the upper median element", func(t *testing.T) {
		t.Parallel()
		// Sorted pages: 2 4 4 10 20 150 -> index 3 -> 10.
		if summary.MedianPages != 10 {
			t.Errorf("expected median 10, got %v", summary.MedianPages)
		}
	})

	t.Run("state counts", func(t *testing.T) {
		t.Parallel()
		if summary.Count(StateSuccess) != 2 {
			t.Errorf("expected 2 successes, got %d", summary.Count(StateSuccess))
		}
		if summary.Count(StateCycle) != 2 {
			t.Errorf("expected 2 cycles, got %d", summary.Count(StateCycle))
		}
		if summary.Count(StateDeadEnd) != 1 {
			t.Errorf("expected 1 dead end, got %d", summary.Count(StateDeadEnd))
		}
		if summary.Count(StateStepLimit) != 1 {
			t.Errorf("expected 1 step limit, got %d", summary.Count(StateStepLimit))
		}
		if summary.Count(StateFetchError) != 0 {
			t.Errorf("expected 0 fetch errors, got %d", summary.Count(StateFetchError))
		}
	})

	t.Run("top terminals most common first", func(t *testing.T) {
		t.Parallel()
		if len(summary.TopTerminals) != 3 {
			t.Fatalf("expected 3 terminal pages, got %d", len(summary.TopTerminals))
		}
		if summary.TopTerminals[0].Page != "https://x/wiki/Loop" || summary.TopTerminals[0].Count != 2 {
			t.Errorf("unexpected top terminal: %+v", summary.TopTerminals[0])
		}
	})

	t.Run("histogram excludes step-limited walks", func(t *testing.T) {
		t.Parallel()
		// Buckets: 2->1, 4->2, 10->1, 20->1; the 150-page walk hit the
		// limit and is excluded.
		want := []PathLengthBucket{{2, 1}, {4, 2}, {10, 1}, {20, 1}}
		if len(summary.Histogram) != len(want) {
			t.Fatalf("expected %d buckets, got %d", len(want), len(summary.Histogram))
		}
		for i, bucket := range want {
			if summary.Histogram[i] != bucket {
				t.Errorf("bucket %d: expected %+v, got %+v", i, bucket, summary.Histogram[i])
			}
		}
	})
}

// TestNewExperimentSummaryEmpty verifies that an empty run does not
// divide by zero.
func TestNewExperimentSummaryEmpty(t *testing.T) {
	t.Parallel()

	summary := NewExperimentSummary(nil, 0)
	if summary.TotalWalks != 0 {
		t.Errorf("expected 0 walks, got %d", summary.TotalWalks)
	}
	if summary.SuccessRate != 0 {
		t.Errorf("expected success rate 0, got %v", summary.SuccessRate)
	}
	if summary.MeanPages != 0 {
		t.Errorf("expected mean 0, got %v", summary.MeanPages)
	}
}

// TestTopTerminalsTieBreak verifies deterministic ordering when counts
// are equal.
func TestTopTerminalsTieBreak(t *testing.T) {
	t.Parallel()

	counts := map[ArticleRef]int{
		"https://x/wiki/B": 1,
		"https://x/wiki/A": 1,
		"https://x/wiki/C": 2,
	}

	top := topTerminals(counts, 10)
	if top[0].Page != "https://x/wiki/C" {
		t.Errorf("expected C first, got %q", top[0].Page)
	}
	if top[1].Page != "https://x/wiki/A" || top[2].Page != "https://x/wiki/B" {
		t.Errorf("expected ties in reference order, got %q then %q", top[1].Page, top[2].Page)
	}
}

// TestTopTerminalsLimit verifies the ten-entry cap.
func TestTopTerminalsLimit(t *testing.T) {
	t.Parallel()

	counts := make(map[ArticleRef]int)
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		counts[ArticleRef("https://x/wiki/"+name)] = 1
	}

	if top := topTerminals(counts, topTerminalCount); len(top) != topTerminalCount {
		t.Errorf("expected %d entries, got %d", topTerminalCount, len(top))
	}
}

// TestExperimentReportFinalize verifies that finalizing a report computes
// its summary and preserves the outcome list.
func TestExperimentReportFinalize(t *testing.T) {
	t.Parallel()

	report := NewExperimentReport(ArticleRef("https://x/wiki/Philosophy"), "https://x")
	outcomes := []WalkOutcome{
		{RunID: 1, ReachedTarget: true, PagesVisited: 3, State: StateSuccess},
	}

	report.Finalize(outcomes, 7)

	if report.CompletedWalks() != 1 {
		t.Errorf("expected 1 completed walk, got %d", report.CompletedWalks())
	}
	if report.Summary == nil {
		t.Fatal("expected a summary")
	}
	if report.Summary.CacheSize != 7 {
		t.Errorf("expected cache size 7, got %d", report.Summary.CacheSize)
	}
	if report.FinishedAt.IsZero() {
		t.Error("expected FinishedAt to be stamped")
	}
	if report.Duration() < 0 {
		t.Errorf("expected non-negative duration, got %v", report.Duration())
	}
}
