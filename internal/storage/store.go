// Package storage persists issue records and embedding bookkeeping in
// SQLite. Issue rows are owned by the ingestion side; the triage core reads
// them and records which issues carry a live embedding of each kind.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Store wraps the SQLite database
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := userVersion(db)
	if err != nil {
		return err
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS issues (
		  key           TEXT PRIMARY KEY,
		  summary       TEXT NOT NULL,
		  description   TEXT NOT NULL DEFAULT '',
		  status        TEXT NOT NULL DEFAULT '',
		  type          TEXT NOT NULL DEFAULT '',
		  priority      TEXT NOT NULL DEFAULT '',
		  assignee      TEXT NOT NULL DEFAULT '',
		  reporter      TEXT NOT NULL DEFAULT '',
		  created_at    TEXT NOT NULL,
		  updated_at    TEXT NOT NULL,
		  custom_fields TEXT
		);

		CREATE TABLE IF NOT EXISTS embeddings (
		  issue_key     TEXT NOT NULL,
		  kind          TEXT NOT NULL,
		  model_version TEXT NOT NULL,
		  dimensions    INTEGER NOT NULL,
		  indexed_at    TEXT NOT NULL,
		  PRIMARY KEY (issue_key, kind),
		  FOREIGN KEY (issue_key) REFERENCES issues(key) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_embeddings_kind
		ON embeddings(kind, model_version);
		`

		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("failed to apply schema v1: %w", err)
		}

		if err := setUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// userVersion reads PRAGMA user_version
func userVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read user_version: %w", err)
	}
	return version, nil
}

// setUserVersion writes PRAGMA user_version
func setUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
