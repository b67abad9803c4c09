package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/wikiwalk/wikiwalk/internal/config"
	"github.com/wikiwalk/wikiwalk/internal/database"
	"github.com/wikiwalk/wikiwalk/internal/experiment"
	"github.com/wikiwalk/wikiwalk/internal/log"
	"github.com/wikiwalk/wikiwalk/internal/model"
	"github.com/wikiwalk/wikiwalk/internal/report"
	"github.com/wikiwalk/wikiwalk/internal/walker"
	"github.com/wikiwalk/wikiwalk/internal/wiki"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the first-link walk experiment",
		Long: `Run performs a batch of independent first-link walks.

Each walk starts at a random article, follows the first qualifying link
in the article body, and repeats until it reaches the target article,
revisits an article, finds a page without links, or exhausts its step
budget. First links are cached in a local database, so repeat visits to
an article cost no network fetch and later runs get faster.

Examples:
  # Run the default experiment (5000 walks toward Philosophy)
  wikiwalk run

  # A quick run with a smaller batch and four concurrent walks
  wikiwalk run -n 200 -w 4

  # Walk the German edition toward Philosophie
  wikiwalk run -b https://de.wikipedia.org -t Philosophie

  # Use an edition section from the configuration file
  wikiwalk run --edition de.wikipedia.org

  # Write a Markdown report to a file
  wikiwalk run --markdown -o report.md

  # Route requests through a SOCKS5 proxy
  wikiwalk run -x 127.0.0.1:9050

Configuration file (.wikiwalk) example:
  defaults:
    maxSteps: 150
  editions:
    de.wikipedia.org:
      baseURL: "https://de.wikipedia.org"
      target: "Philosophie"`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	// Walk behavior flags
	cmd.Flags().IntP("runs", "n", config.DefaultRuns,
		"Number of walks in the experiment")
	cmd.Flags().IntP("max-steps", "s", config.DefaultMaxSteps,
		"Step budget per walk, counted in distinct articles entered")
	cmd.Flags().StringP("target", "t", config.DefaultTargetArticle,
		"Target article that defines walk success")
	cmd.Flags().StringP("base-url", "b", config.DefaultBaseURL,
		"Base URL of the encyclopedia edition to walk")
	cmd.Flags().String("random-page", "",
		"Random-article endpoint URL (default: derived from the base URL)")
	cmd.Flags().BoolP("skip-parenthetical", "P", false,
		"Skip links that appear inside parenthesized asides")

	// Network flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent walks")
	cmd.Flags().DurationP("delay", "d", config.DefaultFetchDelay,
		"Pause after each network fetch (cache hits do not pause)")
	cmd.Flags().DurationP("timeout", "T", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().IntP("retries", "r", config.DefaultMaxRetries,
		"Number of retries for transiently failed requests")
	cmd.Flags().StringP("proxy", "x", "",
		"Route requests through a SOCKS5 proxy at the given host:port")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikiwalk in current or home directory)")
	cmd.Flags().StringP("edition", "e", "",
		"Edition section from the configuration file to apply")

	// Report flags
	cmd.Flags().String("csv", config.DefaultCSVFile,
		"Per-walk results CSV file path (empty disables the file)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().BoolP("quiet", "q", false,
		"Suppress the progress bar")

	// Database flags
	cmd.Flags().String("db-dir", "",
		"Directory for the link cache database (default: XDG data directory)")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown.
	// An interrupt cancels outstanding walks; completed outcomes are
	// still reported and saved.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runExperiment(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Runs, err = cmd.Flags().GetInt("runs")
	if err != nil {
		return nil, err
	}

	cfg.MaxSteps, err = cmd.Flags().GetInt("max-steps")
	if err != nil {
		return nil, err
	}

	cfg.TargetArticle, err = cmd.Flags().GetString("target")
	if err != nil {
		return nil, err
	}

	cfg.BaseURL, err = cmd.Flags().GetString("base-url")
	if err != nil {
		return nil, err
	}

	cfg.RandomPage, err = cmd.Flags().GetString("random-page")
	if err != nil {
		return nil, err
	}

	cfg.SkipParenthetical, err = cmd.Flags().GetBool("skip-parenthetical")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.FetchDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.ProxyAddress, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.Edition, err = cmd.Flags().GetString("edition")
	if err != nil {
		return nil, err
	}

	cfg.CSVFile, err = cmd.Flags().GetString("csv")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Quiet, err = cmd.Flags().GetBool("quiet")
	if err != nil {
		return nil, err
	}

	// Load edition configurations from config file
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Editions, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.Editions = &config.File{
			Editions: make(map[string]config.EditionConfig),
		}
	}

	// Overlay file defaults and the selected edition section, then restore
	// explicitly set flags so command-line values win over the file.
	cfg.ApplyEdition(cfg.Editions.Defaults)
	if cfg.Edition != "" {
		if !cfg.Editions.HasEdition(cfg.Edition) {
			return nil, fmt.Errorf("%w: %q", config.ErrUnknownEdition, cfg.Edition)
		}
		cfg.ApplyEdition(cfg.Editions.GetEditionConfig(cfg.Edition))
	}
	if err := restoreChangedFlags(cmd, cfg); err != nil {
		return nil, err
	}

	// Always save to database using XDG data directory unless overridden
	cfg.SaveToDB = true
	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	return cfg, nil
}

// restoreChangedFlags re-applies flags the user set explicitly, undoing
// any config file overlay for those fields.
func restoreChangedFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL, err = cmd.Flags().GetString("base-url")
		if err != nil {
			return err
		}
		// A new base invalidates a derived random page.
		cfg.RandomPage = ""
	}

	if cmd.Flags().Changed("random-page") {
		cfg.RandomPage, err = cmd.Flags().GetString("random-page")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("target") {
		cfg.TargetArticle, err = cmd.Flags().GetString("target")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("max-steps") {
		cfg.MaxSteps, err = cmd.Flags().GetInt("max-steps")
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("skip-parenthetical") {
		cfg.SkipParenthetical, err = cmd.Flags().GetBool("skip-parenthetical")
		if err != nil {
			return err
		}
	}

	return nil
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(log.NewCompactHandler(handler))
}

// runExperiment executes the experiment.
func runExperiment(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting experiment",
		"target", cfg.TargetArticle,
		"baseURL", cfg.BaseURL,
		"runs", cfg.Runs,
		"maxSteps", cfg.MaxSteps,
		"workers", cfg.Workers,
	)

	// Open database connection for the link cache and run history
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Info("link cache opened", "path", db.Path())

	client, err := newWikiClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	runner := newWalkerForConfig(cfg, client, db, logger)

	target := model.ArticleURL(cfg.BaseURL, cfg.TargetArticle)
	expReport := model.NewExperimentReport(target, cfg.BaseURL)
	expReport.RequestedWalks = cfg.Runs
	expReport.MaxSteps = cfg.MaxSteps
	expReport.Workers = cfg.Workers

	driverOpts := []experiment.Option{
		experiment.WithWorkers(cfg.Workers),
		experiment.WithLogger(logger),
	}
	if !cfg.Quiet {
		bar := newProgressBar(cfg.Runs)
		driverOpts = append(driverOpts, experiment.WithObserver(
			func(_ model.WalkOutcome, _, _ int) {
				_ = bar.Add(1) //nolint:errcheck // Progress display is best effort
			}))
	}

	fmt.Printf("Walking %d chains toward %s on %s...\n",
		cfg.Runs, cfg.TargetArticle, cfg.EditionHost())
	startTime := time.Now()

	driver := experiment.New(runner, cfg.Runs, driverOpts...)
	outcomes, runErr := driver.Run(ctx)

	elapsed := time.Since(startTime)

	// The run context may already be cancelled here. Reporting and
	// persistence still run to completion so an interrupted experiment
	// keeps its finished walks.
	finishCtx := context.WithoutCancel(ctx)

	interrupted := errors.Is(runErr, context.Canceled)
	expReport.Interrupted = interrupted
	if runErr != nil && !interrupted {
		expReport.Error = runErr
	}

	cacheSize, err := db.CachedLinkCount(finishCtx)
	if err != nil {
		logger.Warn("failed to count cached links", "error", err)
	}
	expReport.Finalize(outcomes, cacheSize)

	switch {
	case interrupted:
		fmt.Printf("\nInterrupted after %d of %d walks (%s)\n\n",
			len(outcomes), cfg.Runs, elapsed.Round(time.Millisecond))
	case runErr != nil:
		fmt.Fprintf(os.Stderr, "\nExperiment stopped after %d of %d walks: %v\n\n",
			len(outcomes), cfg.Runs, runErr)
	default:
		fmt.Printf("\nExperiment completed in %s\n\n", elapsed.Round(time.Millisecond))
	}

	// Write per-walk CSV rows, the report, and the database record even
	// for partial results
	if err := writeCSVResults(cfg, expReport); err != nil {
		logger.Error("failed to write CSV results", "error", err)
	}

	if err := outputReport(cfg, expReport); err != nil {
		logger.Error("report failed", "error", err)
	}

	if cfg.SaveToDB {
		if err := saveExperimentReport(finishCtx, db, expReport, logger); err != nil {
			logger.Error("failed to save experiment", "error", err)
		}
	}

	if runErr != nil && !interrupted {
		return fmt.Errorf("experiment aborted: %w", runErr)
	}
	return nil
}

// newWikiClient creates the HTTP client for article fetches.
func newWikiClient(cfg *config.Config, logger *slog.Logger) (*wiki.Client, error) {
	policy := wiki.DefaultRetryPolicy()
	policy.MaxRetries = cfg.MaxRetries
	if cfg.RetryBackoff > 0 {
		policy.InitialBackoff = cfg.RetryBackoff
	}

	opts := []wiki.Option{
		wiki.WithTimeout(cfg.Timeout),
		wiki.WithUserAgent(cfg.UserAgent),
		wiki.WithRetryPolicy(policy),
		wiki.WithMaxBodySize(cfg.MaxBodySize),
		wiki.WithRandomPage(cfg.RandomPageURL()),
		wiki.WithFetchDelay(cfg.FetchDelay),
		wiki.WithLogger(logger),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, wiki.WithProxy(cfg.ProxyAddress))
	}

	return wiki.NewClient(cfg.BaseURL, opts...)
}

// newWalkerForConfig assembles the walk engine from its parts.
func newWalkerForConfig(cfg *config.Config, client *wiki.Client, db *database.LinkDB, logger *slog.Logger) *walker.Walker {
	var extractorOpts []walker.ExtractorOption
	if cfg.SkipParenthetical {
		extractorOpts = append(extractorOpts, walker.WithSkipParenthetical(true))
	}
	extractor := walker.NewExtractor(client.BaseURL(), extractorOpts...)
	source := walker.NewPageSource(client, extractor)

	target := model.ArticleURL(cfg.BaseURL, cfg.TargetArticle)
	return walker.NewWalker(source, target,
		walker.WithMaxSteps(cfg.MaxSteps),
		walker.WithCache(db),
		walker.WithLogger(logger),
	)
}

// newProgressBar creates the progress bar shown during a run.
// It draws on stderr so reports piped from stdout stay clean.
func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("walking"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// writeCSVResults writes per-walk outcome rows to the configured CSV file.
// An empty path disables the file.
func writeCSVResults(cfg *config.Config, expReport *model.ExperimentReport) error {
	if cfg.CSVFile == "" {
		return nil
	}

	f, err := os.OpenFile(cfg.CSVFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()

	if _, err := report.NewCSVWriter(f).Write(expReport); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	fmt.Printf("Per-walk results written to %s\n", cfg.CSVFile)
	return nil
}

// outputReport outputs the experiment report in the requested format.
func outputReport(cfg *config.Config, expReport *model.ExperimentReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full report with all outcomes)
	if cfg.JSONReport {
		_, err := report.NewJSONWriter(output, report.WithPrettyPrint()).Write(expReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		_, err := report.NewMarkdownWriter(output).Write(expReport)
		return err
	}

	// Human-readable report (default)
	_, err := report.NewSimpleWriter(output).Write(expReport)
	return err
}

// saveExperimentReport saves the experiment to the database.
// If db is nil, this function is a no-op.
func saveExperimentReport(ctx context.Context, db *database.LinkDB, expReport *model.ExperimentReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveExperiment(ctx, expReport)
	if err != nil {
		return fmt.Errorf("failed to save experiment: %w", err)
	}

	logger.Info("experiment saved to database", "id", id)
	fmt.Printf("Experiment #%d saved (compare runs with 'wikiwalk stats')\n", id)
	return nil
}
