package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a catalog database from the version before it.
type migration struct {
	name string
	stmt string
}

// migrations[i] brings a database to user_version i+1. Databases created
// from schema.sql still run every step; each statement is a no-op there.
var migrations = []migration{
	{
		// Finds the batches holding an expression without scanning entries.
		name: "index batch entries by expression",
		stmt: `CREATE INDEX IF NOT EXISTS idx_batch_entries_expression
			ON batch_entries(expression_id)`,
	},
}

// Store is a SQLite-backed expression catalog. Expressions are keyed by
// content id and shared by every batch that lists them.
type Store struct {
	db  *sql.DB
	ids IDGenerator
}

// Open opens the catalog database at path, creating it when missing, and
// brings its schema up to date. Opening an up-to-date catalog changes
// nothing.
//
// Batch ids come from a UUIDv7Generator; use OpenWith to supply another.
func Open(path string) (*Store, error) {
	return OpenWith(path, UUIDv7Generator{})
}

// OpenWith is like Open but draws batch ids from ids.
func OpenWith(path string, ids IDGenerator) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if err := prepare(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, ids: ids}, nil
}

// prepare connects to db and readies it for catalog use.
func prepare(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to catalog: %w", err)
	}

	// SaveBatch writes inside one transaction; a single connection keeps
	// concurrent savers from failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create catalog tables: %w", err)
	}
	return migrate(db)
}

// migrate runs the migrations a database has not seen yet, recording each
// in user_version as it completes.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	for v := version; v < len(migrations); v++ {
		m := migrations[v]
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migrate to v%d (%s): %w", v+1, m.name, err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// Close releases the database. It is safe on a zero Store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// verifyPragma reports an error unless pragma name reads expected.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
