// Package journal persists the engine's event stream to SQLite: runs,
// ticks, and applied rewrites. It exists for post-run inspection and
// reporting; the engine never reads it back, and world state itself is
// never persisted here.
package journal

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store is a SQLite-backed journal implementing the engine's Journal
// interface.
type Store struct {
	db *sql.DB
}

// Open creates or opens the journal database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RunStarted records a new run. Empty tokens (a bare Tick outside any run)
// are silently skipped, as are the other writers below.
func (s *Store) RunStarted(run string, rules int) error {
	if run == "" {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (token, rules) VALUES (?, ?)`,
		run, rules)
	return err
}

// RewriteApplied records one applied rewrite.
func (s *Store) RewriteApplied(run string, tick int, ruleName string, cellsTouched int) error {
	if run == "" {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO rewrites (run_token, tick, rule, cells_touched) VALUES (?, ?, ?, ?)`,
		run, tick, ruleName, cellsTouched)
	return err
}

// TickFinished records one finished tick.
func (s *Store) TickFinished(run string, tick, applications, woken int) error {
	if run == "" {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT INTO ticks (run_token, tick, applications, woken) VALUES (?, ?, ?, ?)`,
		run, tick, applications, woken)
	return err
}

// RunFinished stamps the run's end and total tick count.
func (s *Store) RunFinished(run string, ticks int) error {
	if run == "" {
		return nil
	}
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = datetime('now'), ticks = ? WHERE token = ?`,
		ticks, run)
	return err
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
