package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the original first-link experiment so results stay
// comparable between runs of either implementation.
const (
	// DefaultBaseURL is the encyclopedia edition walks run against.
	DefaultBaseURL = "https://en.wikipedia.org"

	// RandomPagePath is the path of the random-article endpoint relative
	// to the base URL. Requesting it redirects to a random article.
	RandomPagePath = "/wiki/Special:Random"

	// DefaultTargetArticle is the article that defines walk success.
	DefaultTargetArticle = "Philosophy"

	// DefaultMaxSteps bounds a single walk. 150 distinct articles is far
	// beyond typical successful path lengths (most finish under 40), so
	// hitting it almost always indicates an undetected meander.
	DefaultMaxSteps = 150

	// DefaultRuns is the number of walks in one experiment. 5000 gives
	// success-rate estimates with a standard error under one percent.
	DefaultRuns = 5000

	// DefaultTimeout is the per-request timeout. Encyclopedia responses
	// normally arrive well within 10 seconds; longer waits are better
	// spent on a retry.
	DefaultTimeout = 10 * time.Second

	// DefaultFetchDelay is the pause after each network fetch. This is a
	// politeness setting; cache hits do not pause.
	DefaultFetchDelay = 50 * time.Millisecond

	// DefaultMaxRetries is how many times a failed GET is retried.
	DefaultMaxRetries = 5

	// DefaultRetryBackoff is the wait before the first retry; it doubles
	// on each subsequent retry up to the policy's cap.
	DefaultRetryBackoff = 1 * time.Second

	// DefaultUserAgent identifies wikiwalk in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify experiment traffic in their logs.
	DefaultUserAgent = "wikiwalk/1.0 (+https://github.com/wikiwalk/wikiwalk; educational first-link experiment)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for even the largest article pages while
	// preventing memory exhaustion from unexpected responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultWorkers is the number of concurrent walks. The baseline
	// experiment is sequential.
	DefaultWorkers = 1

	// DefaultCSVFile is where per-walk outcome records are written.
	DefaultCSVFile = "wikiwalk_results.csv"

	// AppName is the application name used for XDG directory paths.
	AppName = "wikiwalk"
)

// Config holds all configuration options for wikiwalk.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., WalkConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// BaseURL is the encyclopedia edition to walk, e.g.
	// "https://en.wikipedia.org". Relative links resolve against it and
	// the target article lives under it.
	BaseURL string

	// RandomPage is the full URL of the random-article endpoint.
	// Empty means derive it from BaseURL and RandomPagePath, which keeps
	// it consistent when an edition override changes the base.
	RandomPage string

	// TargetArticle is the article name that defines walk success.
	TargetArticle string

	// MaxSteps is the per-walk budget of distinct articles.
	MaxSteps int

	// Runs is the number of independent walks in the experiment.
	Runs int

	// Workers is how many walks run concurrently. 1 keeps the sequential
	// baseline; higher values share the cache and transport.
	Workers int

	// FetchDelay is the pause applied after each network fetch.
	FetchDelay time.Duration

	// Timeout is the per-request timeout for each HTTP GET.
	Timeout time.Duration

	// MaxRetries is how many times a transiently failed GET is retried.
	MaxRetries int

	// RetryBackoff is the wait before the first retry.
	RetryBackoff time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. 0 means the default.
	MaxBodySize int64

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// Empty means direct connections.
	ProxyAddress string

	// SkipParenthetical enables the refinement that ignores links inside
	// parenthesized asides. Off by default to match the plain first-link
	// rule.
	SkipParenthetical bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// Quiet suppresses the progress bar during a run.
	Quiet bool

	// CSVFile is where per-walk outcome records are written.
	// Empty disables the CSV file.
	CSVFile string

	// JSONReport enables JSON report output instead of the human-readable
	// summary. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output with tables and a pie
	// chart. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .wikiwalk in the current directory,
	// the user's home directory, and the XDG config directory.
	ConfigFilePath string

	// Edition selects a named edition section from the configuration
	// file, e.g. "de.wikipedia.org".
	Edition string

	// Editions holds edition overrides loaded from the config file.
	Editions *File

	// DBDir is the directory holding the SQLite database with the
	// first-link cache and experiment history.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to save the experiment report to the
	// database for later use by the stats command.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to the original experiment's defaults.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, step
// budget). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseURL:       DefaultBaseURL,
		TargetArticle: DefaultTargetArticle,
		MaxSteps:      DefaultMaxSteps,
		Runs:          DefaultRuns,
		Workers:       DefaultWorkers,
		FetchDelay:    DefaultFetchDelay,
		Timeout:       DefaultTimeout,
		MaxRetries:    DefaultMaxRetries,
		RetryBackoff:  DefaultRetryBackoff,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		CSVFile:       DefaultCSVFile,
		SaveToDB:      true,
	}
}

// RandomPageURL returns the random-article endpoint, deriving it from the
// base URL when no explicit endpoint is configured.
func (c *Config) RandomPageURL() string {
	if c.RandomPage != "" {
		return c.RandomPage
	}
	return strings.TrimRight(c.BaseURL, "/") + RandomPagePath
}

// EditionHost returns the host of the configured base URL, used to label
// reports and to key edition overrides.
func (c *Config) EditionHost() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// XDGDataDir returns the XDG data directory for wikiwalk.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/wikiwalk
// On macOS: ~/Library/Application Support/wikiwalk
// On Windows: %LOCALAPPDATA%\wikiwalk
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wikiwalk.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/wikiwalk
// On macOS: ~/Library/Application Support/wikiwalk
// On Windows: %APPDATA%\wikiwalk
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for wikiwalk.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/wikiwalk
// On macOS: ~/Library/Caches/wikiwalk
// On Windows: %LOCALAPPDATA%\wikiwalk\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any walking begins.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TargetArticle) == "" {
		return ErrNoTargetArticle
	}

	// The base URL must be absolute so relative links can resolve
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.Runs <= 0 {
		return ErrInvalidRuns
	}

	if c.MaxSteps <= 0 {
		return ErrInvalidMaxSteps
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.FetchDelay < 0 {
		return ErrInvalidFetchDelay
	}

	if c.MaxRetries < 0 {
		return ErrInvalidRetries
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
