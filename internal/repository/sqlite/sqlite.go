// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database: it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. It is the default
// store; set STORE_DRIVER=postgres to use the postgres package instead.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code, so it builds anywhere Go builds without a C compiler.
//
// DATABASE/SQL OVERVIEW:
// Go's standard library provides "database/sql", a generic interface for SQL databases.
// Key types:
//   - sql.DB    a connection pool (NOT a single connection!)
//   - sql.Tx    a transaction
//   - sql.Row   a single result row
//   - sql.Rows  multiple result rows (must be closed!)
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// The blank-imported driver registers itself with database/sql as "sqlite".
	// We also import it by name to inspect *Error codes (unique violations).
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and provides repository methods.
// It implements both repository.ProjectRepository and repository.AdminRepository.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/portfolio.db"  → file-based database (persistent)
//   - ":memory:"           → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection. With more than one pooled
	// connection each would see its own empty database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) mode lets readers proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Concurrent writers wait up to 5s for the lock instead of failing with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it safe to run on every start.
//
// The UNIQUE constraints are the real guard for the two natural keys
// (projects.github_id, admins.email). The services check first to give a
// nicer error, but only the constraint holds under concurrent requests.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id            TEXT PRIMARY KEY,
			github_id     INTEGER NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			description   TEXT,
			html_url      TEXT NOT NULL,
			pushed_at     DATETIME NOT NULL,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL,
			languages     TEXT NOT NULL DEFAULT '[]',
			languages_url TEXT NOT NULL,
			image_url     TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS admins (
			id            TEXT PRIMARY KEY,
			fullname      TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating admins table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is SQLite rejecting a write because
// of a UNIQUE (or PRIMARY KEY) constraint.
func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// Primary code only (extended result codes off): fall back to the message.
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

// nullString converts an optional string into something every driver accepts.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtr is the reverse of nullString.
func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
