// Package store is the on-device persistence layer: one SQLite database
// holding daily records, baselines, smart cards, operator goals, content
// snapshots, and the provenance log.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS daily_records (
	date           TEXT PRIMARY KEY,
	raw_json       TEXT NOT NULL,
	stats_json     TEXT,
	directive_json TEXT,
	session_json   TEXT,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS baselines (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	payload     TEXT NOT NULL,
	computed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS smart_cards (
	id             TEXT PRIMARY KEY,
	date           TEXT NOT NULL,
	type           TEXT NOT NULL,
	sub_id         TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	priority       INTEGER NOT NULL,
	dismiss_policy TEXT NOT NULL,
	payload_json   TEXT,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL,
	dismissed_at   TEXT,
	completed_at   TEXT,
	UNIQUE(date, type, sub_id)
);

CREATE INDEX IF NOT EXISTS idx_smart_cards_date ON smart_cards(date);
CREATE INDEX IF NOT EXISTS idx_smart_cards_type ON smart_cards(type);

CREATE TABLE IF NOT EXISTS operator_goals (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	primary_goal TEXT NOT NULL,
	horizon      TEXT,
	constraints  TEXT,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS content_snapshots (
	date          TEXT PRIMARY KEY,
	category      TEXT NOT NULL,
	stimulus      TEXT NOT NULL,
	low_impact    INTEGER NOT NULL DEFAULT 0,
	hr_cap        INTEGER NOT NULL DEFAULT 0,
	equipment     TEXT,
	regen_count   INTEGER NOT NULL DEFAULT 0,
	last_regen_at TEXT
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	date         TEXT NOT NULL,
	trigger_type TEXT NOT NULL,
	decision     TEXT NOT NULL,
	reason       TEXT,
	details_json TEXT,
	created_at   TEXT NOT NULL
);
`

// additiveMigrations are best-effort schema drift repairs. Each runs once per
// open; "duplicate column" failures are expected and swallowed.
var additiveMigrations = []string{
	`ALTER TABLE smart_cards ADD COLUMN sub_id TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE content_snapshots ADD COLUMN regen_count INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE content_snapshots ADD COLUMN last_regen_at TEXT`,
	`ALTER TABLE daily_records ADD COLUMN session_json TEXT`,
}

// #endregion schema

// #region store-struct

// Store manages all persisted state in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens the database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	for _, m := range additiveMigrations {
		if _, err := db.Exec(m); err != nil && !isDuplicateColumn(err) {
			return nil, fmt.Errorf("additive migration: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region helpers

func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column")
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
