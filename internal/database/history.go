package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/privacyguard/internal/model"
)

// DBFileName is the name of the SQLite file inside the data directory.
const DBFileName = "privacyguard.db"

// DefaultLimit is the number of runs kept when Options.Limit is zero.
const DefaultLimit = 20

// History errors.
var (
	// ErrEntryNotFound is returned when no entry matches an ID.
	ErrEntryNotFound = errors.New("history entry not found")

	// ErrAmbiguousID is returned when an ID prefix matches several entries.
	ErrAmbiguousID = errors.New("history ID prefix matches more than one entry")

	// ErrNilResults is returned when saving a nil snapshot.
	ErrNilResults = errors.New("cannot save nil detection results")
)

// HistoryDB provides SQLite-based storage for detection history.
//
// Design decision: Entries are identified by a UUID rather than the row ID.
// Row IDs are reused by SQLite after trimming, and a user who copied an ID
// from "history list" must never act on a different run.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// limit is the number of entries kept after each save.
	limit int

	// newID generates entry IDs.
	newID func() string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool

	// Limit is the number of entries kept. Zero means DefaultLimit.
	Limit int
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		Limit:             DefaultLimit,
	}
}

// Entry is one stored detection run.
type Entry struct {
	// ID is the entry's UUID.
	ID string `json:"id"`

	// Label is a user-supplied name. Empty by default.
	Label string `json:"label,omitempty"`

	// Timestamp is when the run completed.
	Timestamp time.Time `json:"timestamp"`

	// Total and Level repeat the run's score for listing.
	Total int         `json:"total"`
	Level model.Level `json:"level"`

	// Failed is the number of categories that fell back.
	Failed int `json:"failed"`

	// Results is the full snapshot. It is nil in List results.
	Results *model.DetectionResults `json:"results,omitempty"`
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

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

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
		limit:  limit,
		newID:  uuid.NewString,
	}

	// Another privacyguard process may hold the write lock briefly.
	if _, err := db.ExecContext(context.Background(), "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per completed detection run. seq orders entries by insertion.
	CREATE TABLE IF NOT EXISTS history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		run_id TEXT NOT NULL DEFAULT '',
		label TEXT NOT NULL DEFAULT '',
		timestamp DATETIME NOT NULL,
		total INTEGER NOT NULL,
		level TEXT NOT NULL,
		failed INTEGER NOT NULL DEFAULT 0,
		results_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveResults stores a snapshot without a label. It satisfies the
// orchestrator's history sink.
func (h *HistoryDB) SaveResults(ctx context.Context, results *model.DetectionResults) error {
	_, err := h.Save(ctx, results, "")
	return err
}

// Save stores a snapshot and trims the history to the configured limit.
// It returns the new entry's ID.
func (h *HistoryDB) Save(ctx context.Context, results *model.DetectionResults, label string) (string, error) {
	if results == nil {
		return "", ErrNilResults
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to serialize results: %w", err)
	}

	ts := results.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // Rollback after Commit is a no-op

	id := h.newID()
	_, err = tx.ExecContext(ctx, `
	INSERT INTO history (id, run_id, label, timestamp, total, level, failed, results_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		results.RunID,
		label,
		ts.UTC().Format(time.RFC3339Nano),
		results.Score.Total,
		string(results.Score.Level),
		results.FailedCount(),
		string(resultsJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert history entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
	DELETE FROM history
	WHERE seq NOT IN (SELECT seq FROM history ORDER BY seq DESC LIMIT ?)
	`, h.limit)
	if err != nil {
		return "", fmt.Errorf("failed to trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit history entry: %w", err)
	}
	return id, nil
}

// List returns every entry, newest first, without the full snapshot.
func (h *HistoryDB) List(ctx context.Context) ([]Entry, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, label, timestamp, total, level, failed
	FROM history
	ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var timestamp, level string
		if err := rows.Scan(&e.ID, &e.Label, &timestamp, &e.Total, &level, &e.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Timestamp = parseTimestamp(timestamp)
		e.Level = model.Level(level)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns the entry whose ID equals or starts with id, including the
// full snapshot. A prefix that matches several entries is ErrAmbiguousID.
func (h *HistoryDB) Get(ctx context.Context, id string) (*Entry, error) {
	fullID, err := h.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	var e Entry
	var timestamp, level, resultsJSON string
	err = h.db.QueryRowContext(ctx, `
	SELECT id, label, timestamp, total, level, failed, results_json
	FROM history
	WHERE id = ?
	`, fullID).Scan(&e.ID, &e.Label, &timestamp, &e.Total, &level, &e.Failed, &resultsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}

	e.Timestamp = parseTimestamp(timestamp)
	e.Level = model.Level(level)

	var results model.DetectionResults
	if err := json.Unmarshal([]byte(resultsJSON), &results); err != nil {
		return nil, fmt.Errorf("failed to parse stored results: %w", err)
	}
	e.Results = &results
	return &e, nil
}

// Latest returns the n newest entries with their snapshots, newest first.
func (h *HistoryDB) Latest(ctx context.Context, n int) ([]*Entry, error) {
	entries, err := h.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) > n {
		entries = entries[:n]
	}

	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		full, err := h.Get(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, full)
	}
	return out, nil
}

// UpdateLabel sets the label of an entry. An empty label clears it.
func (h *HistoryDB) UpdateLabel(ctx context.Context, id, label string) error {
	fullID, err := h.resolveID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := h.db.ExecContext(ctx, `UPDATE history SET label = ? WHERE id = ?`, strings.TrimSpace(label), fullID); err != nil {
		return fmt.Errorf("failed to update label: %w", err)
	}
	return nil
}

// Delete removes one entry.
func (h *HistoryDB) Delete(ctx context.Context, id string) error {
	fullID, err := h.resolveID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := h.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, fullID); err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (h *HistoryDB) Clear(ctx context.Context) (int64, error) {
	result, err := h.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return result.RowsAffected()
}

// resolveID expands an ID prefix to a full entry ID.
func (h *HistoryDB) resolveID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty ID", ErrEntryNotFound)
	}

	// LIKE wildcards in user input are escaped so a prefix matches literally.
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	rows, err := h.db.QueryContext(ctx, `
	SELECT id FROM history WHERE id LIKE ? ESCAPE '\' LIMIT 2
	`, escaped+"%")
	if err != nil {
		return "", fmt.Errorf("failed to look up history entry: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan history ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrEntryNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // how Save writes timestamps
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
