package model

import "sort"

// topTerminalCount caps how many terminal pages a summary keeps.
const topTerminalCount = 10

// ExperimentSummary holds the aggregate statistics computed over one
// experiment's walk outcomes. It is the curated view printed after a run
// and stored alongside the raw outcomes.
//
// Design decision: We compute the summary once from the outcome list and
// keep it as plain data rather than recomputing in every writer, so the
// text, markdown, and JSON reports cannot disagree about the numbers.
type ExperimentSummary struct {
	// TotalWalks is the number of outcomes aggregated.
	TotalWalks int `json:"total_walks"`

	// Successes is the number of walks that reached the target.
	Successes int `json:"successes"`

	// Failures is the number of walks that did not.
	Failures int `json:"failures"`

	// SuccessRate is Successes/TotalWalks in [0,1]; zero for an empty run.
	SuccessRate float64 `json:"success_rate"`

	// MeanPages is the mean of pages visited across all walks, failed
	// walks included.
	MeanPages float64 `json:"mean_pages"`

	// MedianPages is the upper median element of pages visited across
	// all walks.
	MedianPages float64 `json:"median_pages"`

	// StateCounts maps each terminal state to the number of walks that
	// ended in it.
	StateCounts map[TerminalState]int `json:"state_counts"`

	// TopTerminals lists the most frequent non-target terminal pages,
	// most common first, at most ten entries.
	TopTerminals []TerminalPageCount `json:"top_terminals,omitempty"`

	// Histogram is the distribution of pages visited, step-limited walks
	// excluded, in ascending page order.
	Histogram []PathLengthBucket `json:"histogram,omitempty"`

	// CacheSize is the number of first-link entries in the cache after
	// the run.
	CacheSize int64 `json:"cache_size"`
}

// TerminalPageCount pairs a terminal page with how many walks ended on it.
type TerminalPageCount struct {
	// Page is the terminal article.
	Page ArticleRef `json:"page"`

	// Count is the number of walks that terminated there.
	Count int `json:"count"`
}

// PathLengthBucket is one bar of the path-length distribution.
type PathLengthBucket struct {
	// Pages is the path length (distinct articles entered).
	Pages int `json:"pages"`

	// Count is the number of walks with that path length.
	Count int `json:"count"`
}

// NewExperimentSummary aggregates outcomes into an ExperimentSummary.
// cacheSize is the first-link store's entry count after the run.
func NewExperimentSummary(outcomes []WalkOutcome, cacheSize int64) *ExperimentSummary {
	summary := &ExperimentSummary{
		TotalWalks:  len(outcomes),
		StateCounts: make(map[TerminalState]int),
		CacheSize:   cacheSize,
	}
	if len(outcomes) == 0 {
		return summary
	}

	pages := make([]int, 0, len(outcomes))
	terminals := make(map[ArticleRef]int)
	histogram := make(map[int]int)

	total := 0
	for _, outcome := range outcomes {
		if outcome.ReachedTarget {
			summary.Successes++
		}
		summary.StateCounts[outcome.State]++

		pages = append(pages, outcome.PagesVisited)
		total += outcome.PagesVisited

		if !outcome.TerminalPage.IsZero() {
			terminals[outcome.TerminalPage]++
		}
		if !outcome.HitMaxSteps {
			histogram[outcome.PagesVisited]++
		}
	}

	summary.Failures = summary.TotalWalks - summary.Successes
	summary.SuccessRate = float64(summary.Successes) / float64(summary.TotalWalks)
	summary.MeanPages = float64(total) / float64(summary.TotalWalks)

	sort.Ints(pages)
	summary.MedianPages = float64(pages[len(pages)/2])

	summary.TopTerminals = topTerminals(terminals, topTerminalCount)
	summary.Histogram = sortedHistogram(histogram)

	return summary
}

// topTerminals sorts terminal counts most-common-first and caps the list.
// Ties break on the page reference so the order is deterministic.
func topTerminals(counts map[ArticleRef]int, limit int) []TerminalPageCount {
	result := make([]TerminalPageCount, 0, len(counts))
	for page, count := range counts {
		result = append(result, TerminalPageCount{Page: page, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Page < result[j].Page
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// sortedHistogram converts a page-count map into ascending buckets.
func sortedHistogram(counts map[int]int) []PathLengthBucket {
	result := make([]PathLengthBucket, 0, len(counts))
	for pages, count := range counts {
		result = append(result, PathLengthBucket{Pages: pages, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Pages < result[j].Pages
	})
	return result
}

// Count returns the number of walks that ended in the given state.
func (s *ExperimentSummary) Count(state TerminalState) int {
	return s.StateCounts[state]
}
