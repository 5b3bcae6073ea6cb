// Package postgres implements the repository interfaces on PostgreSQL using
// lib/pq. Select it with STORE_DRIVER=postgres and DATABASE_URL.
//
// Differences from the sqlite store:
//   - placeholders are $1, $2, ... instead of ?
//   - languages live in a native TEXT[] column, read and written with pq.Array
//   - a unique violation arrives as *pq.Error with SQLSTATE 23505
package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE Postgres reports for a UNIQUE conflict.
const uniqueViolation = "23505"

type DB struct {
	conn *sql.DB
}

// New opens a connection pool to databaseURL, checks it and creates the schema.
func New(databaseURL string) (*DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return db, nil
}

// NewFromConn wraps an already-open pool without migrating. Tests use it
// with sqlmock.
func NewFromConn(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id            TEXT PRIMARY KEY,
			github_id     BIGINT NOT NULL UNIQUE,
			name          TEXT NOT NULL,
			description   TEXT,
			html_url      TEXT NOT NULL,
			pushed_at     TIMESTAMPTZ NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL,
			languages     TEXT[] NOT NULL DEFAULT '{}',
			languages_url TEXT NOT NULL,
			image_url     TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at);

		CREATE TABLE IF NOT EXISTS admins (
			id            TEXT PRIMARY KEY,
			fullname      TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
