// Package sqlite implements the account and employee stores on an embedded
// SQLite database for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id              INTEGER PRIMARY KEY,
    username        TEXT NOT NULL UNIQUE,
    password_hash   TEXT NOT NULL,
    role            TEXT NOT NULL CHECK (role IN ('Agent', 'Manager', 'HR', 'AdminSecurity')),
    active          INTEGER NOT NULL DEFAULT 1,
    failed_attempts INTEGER NOT NULL DEFAULT 0 CHECK (failed_attempts >= 0),
    locked_until    INTEGER,
    created_at      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS employees (
    id     INTEGER PRIMARY KEY,
    name   TEXT NOT NULL,
    salary REAL NOT NULL
);
`

// Open opens a SQLite database, sets pragmas and applies the schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates all tables if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Pinger adapts a database handle to the readiness probe.
type Pinger struct {
	db *sql.DB
}

func NewPinger(db *sql.DB) *Pinger {
	return &Pinger{db: db}
}

func (p *Pinger) Name() string { return "sqlite" }

func (p *Pinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
