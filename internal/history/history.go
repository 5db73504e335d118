// Package history keeps a SQLite log of fetch attempts.
// Records themselves are never stored; only what was fetched, when and how it went.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/restdeck/internal/config"
	"github.com/studiowebux/restdeck/internal/migrations"
	"github.com/studiowebux/restdeck/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05.000"

// DefaultLimit is the number of entries Load returns when limit <= 0
const DefaultLimit = 50

type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Save appends one fetch attempt
func (m *Manager) Save(entry types.HistoryEntry) error {
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var errMsg sql.NullString
	if entry.Error != "" {
		errMsg = sql.NullString{String: entry.Error, Valid: true}
	}

	_, err := m.db.Exec(`
		INSERT INTO fetch_history (
			session_id, timestamp, collection, url, status,
			duration_ms, record_count, response_size, error, discarded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		ts.UTC().Format(timestampLayout),
		entry.Collection,
		entry.URL,
		entry.Status,
		entry.Duration,
		entry.RecordCount,
		entry.Size,
		errMsg,
		entry.Discarded,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

// Load returns the newest entries first
func (m *Manager) Load(limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := m.db.Query(`
		SELECT id, session_id, timestamp, collection, url, status,
		       duration_ms, record_count, response_size, error, discarded
		FROM fetch_history
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// LoadSession returns the entries of one run, newest first
func (m *Manager) LoadSession(sessionID string) ([]types.HistoryEntry, error) {
	rows, err := m.db.Query(`
		SELECT id, session_id, timestamp, collection, url, status,
		       duration_ms, record_count, response_size, error, discarded
		FROM fetch_history
		WHERE session_id = ?
		ORDER BY timestamp DESC, id DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	var entries []types.HistoryEntry

	for rows.Next() {
		var (
			entry     types.HistoryEntry
			timestamp string
			errMsg    sql.NullString
		)
		err := rows.Scan(
			&entry.ID,
			&entry.SessionID,
			&timestamp,
			&entry.Collection,
			&entry.URL,
			&entry.Status,
			&entry.Duration,
			&entry.RecordCount,
			&entry.Size,
			&errMsg,
			&entry.Discarded,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		// Stored as UTC text so ordering by the column is chronological
		parsed, err := time.ParseInLocation(timestampLayout, timestamp, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid history timestamp %q: %w", timestamp, err)
		}
		entry.Timestamp = parsed.Local()
		entry.Error = errMsg.String

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM fetch_history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) GetCount() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM fetch_history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
