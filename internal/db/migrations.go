package db

import (
	"database/sql"
	"fmt"
)

// Base schema - uses Snowflake IDs (no AUTOINCREMENT)
const baseSchema = `
CREATE TABLE IF NOT EXISTS captures (
  id INTEGER PRIMARY KEY,
  filename TEXT NOT NULL UNIQUE,
  size_bytes INTEGER NOT NULL,
  sha256 TEXT NOT NULL,
  source TEXT NOT NULL,
  taken_at TEXT NOT NULL,
  upload_status TEXT NOT NULL DEFAULT 'pending',
  upload_attempts INTEGER NOT NULL DEFAULT 0,
  uploaded_at TEXT,
  last_error TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_captures_status ON captures(upload_status);
CREATE INDEX IF NOT EXISTS idx_captures_taken_at ON captures(taken_at);

CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: add sha256 unique index for spool dedupe
	if _, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_captures_sha256 ON captures(sha256)`); err != nil {
		return fmt.Errorf("create idx_captures_sha256: %w", err)
	}

	// Migration 2: add notified column to captures if not exists
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('captures') WHERE name = 'notified'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check notified column: %w", err)
	}

	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE captures ADD COLUMN notified INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("add notified column: %w", err)
		}
	}

	// Migration 3: composite index for the upload sweep (oldest pending first)
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_captures_status_taken ON captures(upload_status, taken_at)`); err != nil {
		return fmt.Errorf("create idx_captures_status_taken: %w", err)
	}

	return nil
}
