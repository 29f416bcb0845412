// Package store is the record store behind Finan: three collections
// (transactions, user_challenges, users) plus the phone-OTP table,
// backed by SQLite. Writes go through typed methods that enforce the
// data-layer invariants (non-negative amounts, increment-only
// challenge mutation) and publish change notifications so live
// subscribers can re-read their snapshot.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	bus *Bus
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// SQLite allows one writer at a time; the busy timeout keeps
	// concurrent increments queued instead of failing.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, bus: NewBus()}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Bus exposes the change-notification bus for live subscribers.
func (s *Store) Bus() *Bus {
	return s.bus
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime is the single point where malformed stored timestamps
// surface. Callers treat a zero result as a malformed record and
// skip it rather than aborting the read.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
