package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikiwalk/wikiwalk/internal/config"
	"github.com/wikiwalk/wikiwalk/internal/database"
	"github.com/wikiwalk/wikiwalk/internal/model"
	"github.com/wikiwalk/wikiwalk/internal/report"
)

// Constants for success-rate direction between two runs.
const (
	rateDirectionImproved  = "improved"
	rateDirectionDeclined  = "declined"
	rateDirectionUnchanged = "unchanged"
)

// NewStatsCmd creates the stats command.
// This command displays and compares experiment results stored in the database.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show and compare saved experiment results",
		Long: `Stats displays experiment results saved by previous runs.

By default it shows the full report of the most recent experiment.
The database also keeps every earlier run, so results can be listed
and pairs of runs can be compared, for example to see how the success
rate shifts between editions or after a rule change.

Examples:
  # Show the most recent experiment report
  wikiwalk stats

  # List all saved experiments
  wikiwalk stats --list

  # Show a specific experiment by ID (use --list to see IDs)
  wikiwalk stats --id 5

  # Compare the two most recent experiments
  wikiwalk stats --compare

  # Output the latest report in JSON format
  wikiwalk stats --json`,
		Args: cobra.NoArgs,
		RunE: runStatsCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List all saved experiments")

	// Comparison and selection flags
	cmd.Flags().BoolP("compare", "c", false,
		"Compare the two most recent experiments")
	cmd.Flags().Int64P("id", "i", 0,
		"Show a specific experiment by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")

	// Database flags
	cmd.Flags().String("db-dir", "",
		"Directory for the link cache database (default: XDG data directory)")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}

	compare, err := cmd.Flags().GetBool("compare")
	if err != nil {
		return err
	}

	experimentID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch {
	case listHistory:
		return listExperimentHistory(ctx, db)
	case compare:
		return runStatsComparison(ctx, db, jsonOutput, markdownOutput)
	case experimentID > 0:
		return showExperimentByID(ctx, db, experimentID, jsonOutput, markdownOutput)
	default:
		return showLatestExperiment(ctx, db, jsonOutput, markdownOutput)
	}
}

// listExperimentHistory lists all experiments saved in the database.
func listExperimentHistory(ctx context.Context, db *database.LinkDB) error {
	metas, err := db.ListExperiments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list experiments: %w", err)
	}

	if len(metas) == 0 {
		fmt.Println("No experiments found in the database.")
		fmt.Println("\nUse 'wikiwalk run' to run the experiment.")
		return nil
	}

	fmt.Printf("Experiment history (%d runs):\n\n", len(metas))
	fmt.Printf("  %-6s  %-20s  %-20s  %7s  %8s\n", "ID", "Date", "Target", "Walks", "Success")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, meta := range metas {
		note := ""
		if meta.Interrupted {
			note = "  (interrupted)"
		}
		fmt.Printf("  %-6d  %-20s  %-20s  %7d  %7.1f%%%s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			model.ArticleRef(meta.Target).Title(),
			meta.TotalWalks,
			meta.SuccessRate*100,
			note,
		)
	}

	fmt.Println("\nUse 'wikiwalk stats --id <id>' to show a specific experiment.")
	fmt.Println("Use 'wikiwalk stats --compare' to compare the latest two.")

	return nil
}

// runStatsComparison compares the two most recent experiments.
func runStatsComparison(ctx context.Context, db *database.LinkDB, jsonOutput, markdownOutput bool) error {
	metas, err := db.ListExperiments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list experiments: %w", err)
	}

	if len(metas) < 2 {
		return fmt.Errorf("at least 2 saved experiments are required for comparison (found %d)", len(metas))
	}

	// Metadata is ordered most recent first
	current, err := db.ExperimentByID(ctx, metas[0].ID)
	if err != nil {
		return fmt.Errorf("failed to load experiment %d: %w", metas[0].ID, err)
	}
	previous, err := db.ExperimentByID(ctx, metas[1].ID)
	if err != nil {
		return fmt.Errorf("failed to load experiment %d: %w", metas[1].ID, err)
	}
	if current == nil || previous == nil {
		return fmt.Errorf("experiment history changed while comparing; rerun 'wikiwalk stats --compare'")
	}

	comparison := compareExperimentReports(previous, current, metas[1].ID, metas[0].ID)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// showExperimentByID renders one saved experiment.
func showExperimentByID(ctx context.Context, db *database.LinkDB, id int64, jsonOutput, markdownOutput bool) error {
	expReport, err := db.ExperimentByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load experiment %d: %w", id, err)
	}
	if expReport == nil {
		return fmt.Errorf("experiment %d not found (use --list to see available IDs)", id)
	}

	return renderSavedReport(expReport, jsonOutput, markdownOutput)
}

// showLatestExperiment renders the most recently saved experiment.
func showLatestExperiment(ctx context.Context, db *database.LinkDB, jsonOutput, markdownOutput bool) error {
	expReport, err := db.LatestExperiment(ctx)
	if err != nil {
		return fmt.Errorf("failed to load latest experiment: %w", err)
	}
	if expReport == nil {
		fmt.Println("No experiments found in the database.")
		fmt.Println("\nUse 'wikiwalk run' to run the experiment.")
		return nil
	}

	return renderSavedReport(expReport, jsonOutput, markdownOutput)
}

// renderSavedReport writes a saved report to stdout in the requested format.
func renderSavedReport(expReport *model.ExperimentReport, jsonOutput, markdownOutput bool) error {
	var w report.Writer
	switch {
	case jsonOutput:
		w = report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
	case markdownOutput:
		w = report.NewMarkdownWriter(os.Stdout)
	default:
		w = report.NewSimpleWriter(os.Stdout)
	}

	_, err := w.Write(expReport)
	return err
}

// ExperimentComparison holds the result of comparing two saved experiments.
type ExperimentComparison struct {
	// Target is the target article both experiments walked toward.
	Target string `json:"target"`

	// Previous contains headline numbers of the older experiment.
	Previous ExperimentStats `json:"previous"`

	// Current contains headline numbers of the newer experiment.
	Current ExperimentStats `json:"current"`

	// SuccessRateDelta is the success-rate change in percentage points.
	SuccessRateDelta float64 `json:"success_rate_delta"`

	// MeanPagesDelta is the change in mean path length.
	MeanPagesDelta float64 `json:"mean_pages_delta"`

	// MedianPagesDelta is the change in median path length.
	MedianPagesDelta float64 `json:"median_pages_delta"`

	// CacheGrowth is how many first links the cache gained between runs.
	CacheGrowth int64 `json:"cache_growth"`

	// Direction is "improved", "declined", or "unchanged", judged on the
	// success rate.
	Direction string `json:"direction"`
}

// ExperimentStats contains headline numbers of one experiment for
// comparison display.
type ExperimentStats struct {
	// ID is the experiment's database ID.
	ID int64 `json:"id"`

	// Finished is when the experiment finished.
	Finished time.Time `json:"finished"`

	// TotalWalks is the number of completed walks.
	TotalWalks int `json:"total_walks"`

	// Successes is the number of walks that reached the target.
	Successes int `json:"successes"`

	// SuccessRate is Successes over TotalWalks in [0, 1].
	SuccessRate float64 `json:"success_rate"`

	// MeanPages is the mean path length of completed walks.
	MeanPages float64 `json:"mean_pages"`

	// MedianPages is the median path length of completed walks.
	MedianPages float64 `json:"median_pages"`

	// CacheSize is the first-link cache size after the experiment.
	CacheSize int64 `json:"cache_size"`

	// Interrupted is true when the run was stopped early.
	Interrupted bool `json:"interrupted,omitempty"`
}

// compareExperimentReports compares two experiment reports.
func compareExperimentReports(previous, current *model.ExperimentReport, previousID, currentID int64) *ExperimentComparison {
	result := &ExperimentComparison{
		Target:   current.Target.Title(),
		Previous: experimentStats(previous, previousID),
		Current:  experimentStats(current, currentID),
	}

	result.SuccessRateDelta = (result.Current.SuccessRate - result.Previous.SuccessRate) * 100
	result.MeanPagesDelta = result.Current.MeanPages - result.Previous.MeanPages
	result.MedianPagesDelta = result.Current.MedianPages - result.Previous.MedianPages
	result.CacheGrowth = result.Current.CacheSize - result.Previous.CacheSize

	switch {
	case result.SuccessRateDelta > 0:
		result.Direction = rateDirectionImproved
	case result.SuccessRateDelta < 0:
		result.Direction = rateDirectionDeclined
	default:
		result.Direction = rateDirectionUnchanged
	}

	return result
}

// experimentStats extracts headline numbers from a report.
func experimentStats(expReport *model.ExperimentReport, id int64) ExperimentStats {
	stats := ExperimentStats{
		ID:          id,
		Finished:    expReport.FinishedAt,
		Interrupted: expReport.Interrupted,
	}

	summary := expReport.Summary
	if summary == nil {
		summary = model.NewExperimentSummary(expReport.Outcomes, 0)
	}

	stats.TotalWalks = summary.TotalWalks
	stats.Successes = summary.Successes
	stats.SuccessRate = summary.SuccessRate
	stats.MeanPages = summary.MeanPages
	stats.MedianPages = summary.MedianPages
	stats.CacheSize = summary.CacheSize

	return stats
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ExperimentComparison) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ExperimentComparison) error {
	fmt.Printf("# Experiment Comparison: %s\n\n", result.Target)

	fmt.Println("## Summary")
	fmt.Printf("\n**Success Rate:** %s\n\n", formatRateDirection(result.Direction, result.SuccessRateDelta))

	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Run | #%d | #%d | - |\n", result.Previous.ID, result.Current.ID)
	fmt.Printf("| Date | %s | %s | - |\n",
		result.Previous.Finished.Format("2006-01-02 15:04"),
		result.Current.Finished.Format("2006-01-02 15:04"))
	fmt.Printf("| Walks | %d | %d | %s |\n",
		result.Previous.TotalWalks,
		result.Current.TotalWalks,
		formatCountDelta(int64(result.Current.TotalWalks-result.Previous.TotalWalks)))
	fmt.Printf("| Success rate | %.1f%% | %.1f%% | %s |\n",
		result.Previous.SuccessRate*100,
		result.Current.SuccessRate*100,
		formatFloatDelta(result.SuccessRateDelta, 1)+"pp")
	fmt.Printf("| Mean pages | %.2f | %.2f | %s |\n",
		result.Previous.MeanPages,
		result.Current.MeanPages,
		formatFloatDelta(result.MeanPagesDelta, 2))
	fmt.Printf("| Median pages | %.1f | %.1f | %s |\n",
		result.Previous.MedianPages,
		result.Current.MedianPages,
		formatFloatDelta(result.MedianPagesDelta, 1))
	fmt.Printf("| Cached links | %d | %d | %s |\n",
		result.Previous.CacheSize,
		result.Current.CacheSize,
		formatCountDelta(result.CacheGrowth))

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ExperimentComparison) error {
	fmt.Printf("Experiment Comparison: %s\n", result.Target)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nSuccess Rate: %s\n", formatRateDirection(result.Direction, result.SuccessRateDelta))

	fmt.Printf("\nPrevious run: #%-4d %s  (%d walks)\n",
		result.Previous.ID,
		result.Previous.Finished.Format("2006-01-02 15:04:05"),
		result.Previous.TotalWalks)
	fmt.Printf("Current run:  #%-4d %s  (%d walks)\n",
		result.Current.ID,
		result.Current.Finished.Format("2006-01-02 15:04:05"),
		result.Current.TotalWalks)

	fmt.Println("\nMetrics:")
	fmt.Printf("  %-14s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 50))
	fmt.Printf("  %-14s  %-10s  %-10s  %-10s\n", "Success rate",
		fmt.Sprintf("%.1f%%", result.Previous.SuccessRate*100),
		fmt.Sprintf("%.1f%%", result.Current.SuccessRate*100),
		formatFloatDelta(result.SuccessRateDelta, 1)+"pp")
	fmt.Printf("  %-14s  %-10.2f  %-10.2f  %-10s\n", "Mean pages",
		result.Previous.MeanPages,
		result.Current.MeanPages,
		formatFloatDelta(result.MeanPagesDelta, 2))
	fmt.Printf("  %-14s  %-10.1f  %-10.1f  %-10s\n", "Median pages",
		result.Previous.MedianPages,
		result.Current.MedianPages,
		formatFloatDelta(result.MedianPagesDelta, 1))
	fmt.Printf("  %-14s  %-10d  %-10d  %-10s\n", "Cached links",
		result.Previous.CacheSize,
		result.Current.CacheSize,
		formatCountDelta(result.CacheGrowth))

	return nil
}

// formatRateDirection formats the success-rate direction for display.
func formatRateDirection(direction string, delta float64) string {
	switch direction {
	case rateDirectionImproved:
		return fmt.Sprintf("IMPROVED (%s percentage points)", formatFloatDelta(delta, 1))
	case rateDirectionDeclined:
		return fmt.Sprintf("DECLINED (%s percentage points)", formatFloatDelta(delta, 1))
	default:
		return "UNCHANGED"
	}
}

// formatFloatDelta formats a numeric delta with sign for display.
func formatFloatDelta(delta float64, decimals int) string {
	if delta == 0 {
		return "0"
	}
	return fmt.Sprintf("%+.*f", decimals, delta)
}

// formatCountDelta formats an integer delta with sign for display.
func formatCountDelta(delta int64) string {
	if delta > 0 {
		return "+" + strconv.FormatInt(delta, 10)
	} else if delta < 0 {
		return strconv.FormatInt(delta, 10)
	}
	return "0"
}
