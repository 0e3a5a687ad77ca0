package db

import (
	"database/sql"
	"fmt"
)

// Base schema - uses Snowflake IDs (no AUTOINCREMENT)
const baseSchema = `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY,
  run_id TEXT NOT NULL UNIQUE,
  source_url TEXT NOT NULL,
  status TEXT NOT NULL,
  entries_total INTEGER NOT NULL DEFAULT 0,
  entries_translated INTEGER NOT NULL DEFAULT 0,
  entries_reused INTEGER NOT NULL DEFAULT 0,
  chunks_translated INTEGER NOT NULL DEFAULT 0,
  chunks_cached INTEGER NOT NULL DEFAULT 0,
  chunks_degraded INTEGER NOT NULL DEFAULT 0,
  tokens_used INTEGER NOT NULL DEFAULT 0,
  error_message TEXT,
  started_at TEXT NOT NULL,
  finished_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

CREATE TABLE IF NOT EXISTS entry_translations (
  id INTEGER PRIMARY KEY,
  run_id TEXT NOT NULL,
  link TEXT NOT NULL,
  title TEXT,
  chunks INTEGER NOT NULL DEFAULT 0,
  cached_chunks INTEGER NOT NULL DEFAULT 0,
  degraded_chunks INTEGER NOT NULL DEFAULT 0,
  tokens_used INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_entry_translations_run_id ON entry_translations(run_id);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	// Run incremental migrations
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: Add tokens_total column to runs for the cumulative ledger value
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('runs') WHERE name = 'tokens_total'
	`).Scan(&count)
	if err != nil {
		return fmt.Errorf("check tokens_total column: %w", err)
	}

	if count == 0 {
		if _, err := db.Exec(`ALTER TABLE runs ADD COLUMN tokens_total INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("add tokens_total column: %w", err)
		}
	}

	// Migration 2: Index entry history by link for per-entry lookups
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_entry_translations_link ON entry_translations(link)`); err != nil {
		return fmt.Errorf("create idx_entry_translations_link: %w", err)
	}

	return nil
}
