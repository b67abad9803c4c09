package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/wikiwalk/wikiwalk/internal/model"
)

// dbFileName is the database file created under the data directory.
const dbFileName = "wikiwalk.db"

// LinkDB provides SQLite-based storage for the first-link cache and
// experiment history. It manages connection pooling and provides
// methods for the walker and the stats command.
//
// Design decision: We keep the cache and the experiment history in one
// database file rather than two. The cache gives later experiments
// their speedup, so the two belong to the same lifecycle and back up
// together.
type LinkDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures LinkDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a LinkDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*LinkDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; the cache is written from every
	// walk, so serialize all access through a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ldb := &LinkDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := ldb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return ldb, nil
}

// Close closes the database connection.
func (ldb *LinkDB) Close() error {
	return ldb.db.Close()
}

// Path returns the path of the database file.
func (ldb *LinkDB) Path() string {
	return ldb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (ldb *LinkDB) createTables() error {
	schema := `
	-- First-link cache: one row per article.
	-- A NULL next_url records that the article has no qualifying link,
	-- which is a valid, final answer and must not trigger a refetch.
	CREATE TABLE IF NOT EXISTS first_links (
		url TEXT PRIMARY KEY,
		next_url TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Experiment reports store complete runs as JSON plus a few
	-- denormalized columns for listing without parsing the blob.
	CREATE TABLE IF NOT EXISTS experiments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		base_url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		total_walks INTEGER NOT NULL,
		successes INTEGER NOT NULL,
		success_rate REAL NOT NULL,
		interrupted INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_experiments_timestamp ON experiments(timestamp);
	CREATE INDEX IF NOT EXISTS idx_experiments_target ON experiments(target);
	`

	_, err := ldb.db.ExecContext(context.Background(), schema)
	return err
}

// Lookup returns the cached first link for an article. The second
// result is false when the article has never been resolved; a cached
// no-link entry returns a no-link result and true.
func (ldb *LinkDB) Lookup(ctx context.Context, ref model.ArticleRef) (model.LinkResult, bool, error) {
	query := `SELECT next_url FROM first_links WHERE url = ?`

	var nextURL sql.NullString
	err := ldb.db.QueryRowContext(ctx, query, ref.String()).Scan(&nextURL)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LinkResult{}, false, nil
	}
	if err != nil {
		return model.LinkResult{}, false, fmt.Errorf("failed to look up first link: %w", err)
	}

	if !nextURL.Valid {
		return model.NoLink(), true, nil
	}
	return model.LinkTo(model.ArticleRef(nextURL.String)), true, nil
}

// Store records the first link of an article, overwriting any previous
// entry. Uses UPSERT so re-resolving an article refreshes its row.
func (ldb *LinkDB) Store(ctx context.Context, ref model.ArticleRef, result model.LinkResult) error {
	query := `
	INSERT INTO first_links (url, next_url)
	VALUES (?, ?)
	ON CONFLICT(url) DO UPDATE SET
		next_url = excluded.next_url,
		updated_at = CURRENT_TIMESTAMP
	`

	var nextURL sql.NullString
	if next, ok := result.Next(); ok {
		nextURL = sql.NullString{String: next.String(), Valid: true}
	}

	if _, err := ldb.db.ExecContext(ctx, query, ref.String(), nextURL); err != nil {
		return fmt.Errorf("failed to store first link: %w", err)
	}
	return nil
}

// CachedLinkCount returns the number of articles in the first-link cache.
func (ldb *LinkDB) CachedLinkCount(ctx context.Context) (int64, error) {
	var count int64
	err := ldb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM first_links`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cached links: %w", err)
	}
	return count, nil
}

// SaveExperiment saves a complete experiment report and returns its ID.
func (ldb *LinkDB) SaveExperiment(ctx context.Context, report *model.ExperimentReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	var totalWalks, successes int
	var successRate float64
	if report.Summary != nil {
		totalWalks = report.Summary.TotalWalks
		successes = report.Summary.Successes
		successRate = report.Summary.SuccessRate
	}

	query := `
	INSERT INTO experiments (target, base_url, total_walks, successes, success_rate, interrupted, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := ldb.db.ExecContext(ctx, query,
		report.Target.String(),
		report.BaseURL,
		totalWalks,
		successes,
		successRate,
		report.Interrupted,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save experiment: %w", err)
	}

	return result.LastInsertId()
}

// LatestExperiment retrieves the most recently saved experiment report.
// Returns nil without error when no experiments have been saved.
func (ldb *LinkDB) LatestExperiment(ctx context.Context) (*model.ExperimentReport, error) {
	query := `
	SELECT report_json FROM experiments
	ORDER BY id DESC
	LIMIT 1
	`

	var reportJSON string
	err := ldb.db.QueryRowContext(ctx, query).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}

	return parseReport(reportJSON)
}

// ExperimentByID retrieves an experiment report by its database ID.
// Returns nil without error when the ID doesn't exist.
func (ldb *LinkDB) ExperimentByID(ctx context.Context, id int64) (*model.ExperimentReport, error) {
	query := `SELECT report_json FROM experiments WHERE id = ?`

	var reportJSON string
	err := ldb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}

	return parseReport(reportJSON)
}

// ExperimentMetadata contains summary information about a saved
// experiment. This is used for listing history without loading the
// full report.
type ExperimentMetadata struct {
	// ID is the unique identifier of the experiment in the database.
	ID int64

	// Target is the article the experiment walked toward.
	Target string

	// BaseURL is the Wikipedia edition the experiment ran against.
	BaseURL string

	// Timestamp is when the experiment was saved.
	Timestamp time.Time

	// TotalWalks is the number of walks in the experiment.
	TotalWalks int

	// Successes is the number of walks that reached the target.
	Successes int

	// SuccessRate is Successes over TotalWalks.
	SuccessRate float64

	// Interrupted is true when the run was stopped early.
	Interrupted bool
}

// ListExperiments retrieves metadata for all saved experiments, most
// recent first.
func (ldb *LinkDB) ListExperiments(ctx context.Context) ([]ExperimentMetadata, error) {
	query := `
	SELECT id, target, base_url, timestamp, total_walks, successes, success_rate, interrupted
	FROM experiments
	ORDER BY id DESC
	`

	rows, err := ldb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer rows.Close()

	var results []ExperimentMetadata
	for rows.Next() {
		var meta ExperimentMetadata
		var timestamp string

		if err := rows.Scan(
			&meta.ID,
			&meta.Target,
			&meta.BaseURL,
			&timestamp,
			&meta.TotalWalks,
			&meta.Successes,
			&meta.SuccessRate,
			&meta.Interrupted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan experiment metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// parseReport deserializes a stored experiment report.
func parseReport(reportJSON string) (*model.ExperimentReport, error) {
	var report model.ExperimentReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
