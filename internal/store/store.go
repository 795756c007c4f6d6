package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrConflictingSource is returned when a source id is appended twice with
// different content. Records are immutable once stored.
var ErrConflictingSource = errors.New("conflicting source record")

// ErrSessionNotFound is returned when reading a session that was never written.
var ErrSessionNotFound = errors.New("session not found")

// pragmas are applied on every open. journal_mode=WAL persists in the file,
// the rest are per connection.
var pragmas = []struct{ name, value string }{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
}

// migrations upgrade a database whose user_version is below their index+1.
// Append only; a released migration is never edited.
var migrations = []string{
	// v1: ordered batch reconstruction
	`CREATE INDEX IF NOT EXISTS idx_sources_session_seq ON sources(session_id, seq)`,
	// v2: cached resolution lookup by session
	`CREATE INDEX IF NOT EXISTS idx_resolutions_session ON resolutions(session_id)`,
}

func schemaVersion() int { return len(migrations) }

// Store provides durable storage for resolution sessions on SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and migrates it to the
// current schema version. ":memory:" gives a private throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: SQLite has a single writer, and an in-memory database
	// exists only on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return s.migrate()
}

// migrate runs each pending migration in its own transaction together
// with the user_version bump, so a failed step leaves the version behind.
func (s *Store) migrate() error {
	version, err := s.userVersion()
	if err != nil {
		return err
	}
	for v := version; v < schemaVersion(); v++ {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: set user_version: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}
	return nil
}

func (s *Store) userVersion() (int, error) {
	var v int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
