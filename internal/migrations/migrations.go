// Package migrations versions the SQLite schema of the fetch history database.
package migrations

import (
	"database/sql"
	"fmt"
)

// Migration is one forward-only schema step
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// All lists the schema steps in the order they are applied
var All = []Migration{
	{
		Version: 1,
		Name:    "Create fetch_history",
		SQL: `
			CREATE TABLE IF NOT EXISTS fetch_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id TEXT NOT NULL,
				timestamp TEXT NOT NULL,
				collection TEXT NOT NULL,
				url TEXT NOT NULL,
				status INTEGER NOT NULL DEFAULT 0,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				record_count INTEGER NOT NULL DEFAULT 0,
				response_size INTEGER NOT NULL DEFAULT 0,
				error TEXT,
				discarded INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_fetch_history_timestamp ON fetch_history(timestamp DESC);
		`,
	},
	{
		Version: 2,
		Name:    "Index session and collection",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_fetch_history_session ON fetch_history(session_id);
			CREATE INDEX IF NOT EXISTS idx_fetch_history_collection ON fetch_history(collection);
		`,
	},
	{
		Version: 3,
		Name:    "Index per-session listing",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_fetch_history_session_timestamp ON fetch_history(session_id, timestamp DESC);
		`,
	},
}

// Run applies every migration newer than the database's version.
// Each step and its bookkeeping row commit together.
func Run(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range All {
		if m.Version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func apply(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
		return err
	}
	return tx.Commit()
}

// CurrentVersion returns the newest applied migration, 0 for a fresh database
func CurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	return version, err
}
