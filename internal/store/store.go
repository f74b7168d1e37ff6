// Package store persists the emotion history and drift alerts in SQLite.
// Both tables are append-only: rows are inserted and read back, never
// updated or deleted. Writes are serialized through a store-level mutex so
// id assignment stays strictly increasing under concurrent submitters.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver.
)

// Limits for bounded most-recent-first reads. A non-positive limit falls
// back to DefaultLimit; anything above MaxLimit is capped to avoid
// unbounded scans.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Store wraps a SQLite database connection.
type Store struct {
	db *sql.DB

	// mu serializes writes. Reads go straight to the database and are
	// only subject to SQLite's own isolation.
	mu sync.Mutex
}

// New opens (or creates) the SQLite database at dbPath with WAL mode and a
// 5-second busy timeout, then runs any pending migrations. It is safe to
// call on every startup; schema creation is idempotent.
func New(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("check journal mode: %w", err)
	}
	if journalMode != "wal" {
		_ = db.Close()
		return nil, fmt.Errorf("expected WAL journal mode, got %q", journalMode)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// HistoryCount returns the number of persisted emotion events.
func (s *Store) HistoryCount() (int64, error) {
	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count)
	return count, err
}

// AlertsCount returns the number of persisted drift alerts.
func (s *Store) AlertsCount() (int64, error) {
	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM alerts").Scan(&count)
	return count, err
}

// DBSizeBytes returns the database file size in bytes, approximated as
// page_count * page_size.
func (s *Store) DBSizeBytes() (int64, error) {
	var pageCount, pageSize int64
	if err := s.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0, err
	}
	if err := s.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, err
	}
	return pageCount * pageSize, nil
}

// clampLimit applies the DefaultLimit/MaxLimit bounds to a caller limit.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
