package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Initialize creates and returns a database connection
func Initialize(databaseURL string) (*sql.DB, error) {
	// Add SQLite-specific parameters for better concurrent access
	if databaseURL == "feedlink.db" {
		databaseURL = "feedlink.db?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_foreign_keys=1"
	}

	db, err := sql.Open("sqlite3", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(0) // No limit

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set SQLite pragmas for better concurrent access
	pragmas := []string{
		"PRAGMA busy_timeout = 30000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = 1000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA temp_store = memory",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("Warning: failed to set pragma %s: %v", pragma, err)
		}
	}

	log.Println("Database connection established successfully")
	return db, nil
}

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	user_snapshot TEXT NOT NULL,
	token_hash TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
`

const createResetRequestsTable = `
CREATE TABLE IF NOT EXISTS reset_requests (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	requested_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	consumed INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_reset_requests_email ON reset_requests(email);
`

const createMetricSnapshotsTable = `
CREATE TABLE IF NOT EXISTS metric_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	taken_at DATETIME NOT NULL,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_metric_snapshots_taken_at ON metric_snapshots(taken_at);
`

// Migrate runs database migrations
func Migrate(db *sql.DB) error {
	migrations := []string{
		createSessionsTable,
		createResetRequestsTable,
		createMetricSnapshotsTable,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// InsertMetricSnapshot stores a serialized dashboard metrics payload
func InsertMetricSnapshot(db *sql.DB, takenAt time.Time, payload string) error {
	_, err := db.Exec(
		"INSERT INTO metric_snapshots (taken_at, payload) VALUES (?, ?)",
		takenAt.UTC(), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert metric snapshot: %w", err)
	}
	return nil
}

// MetricSnapshot is a stored dashboard metrics record
type MetricSnapshot struct {
	ID      int64     `json:"id"`
	TakenAt time.Time `json:"takenAt"`
	Payload string    `json:"payload"`
}

// RecentMetricSnapshots returns the most recent snapshots, newest first
func RecentMetricSnapshots(db *sql.DB, limit int) ([]MetricSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(
		"SELECT id, taken_at, payload FROM metric_snapshots ORDER BY taken_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []MetricSnapshot
	for rows.Next() {
		var s MetricSnapshot
		if err := rows.Scan(&s.ID, &s.TakenAt, &s.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan metric snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metric snapshots: %w", err)
	}

	return snapshots, nil
}

// PruneMetricSnapshots deletes all but the newest keep rows
func PruneMetricSnapshots(db *sql.DB, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := db.Exec(`
		DELETE FROM metric_snapshots
		WHERE id NOT IN (
			SELECT id FROM metric_snapshots ORDER BY taken_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("failed to prune metric snapshots: %w", err)
	}
	return nil
}
