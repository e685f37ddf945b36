package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS roadmap_runs (
		id          TEXT PRIMARY KEY,
		message     TEXT NOT NULL,
		goal        TEXT NOT NULL DEFAULT '',
		stages      INTEGER NOT NULL DEFAULT 0,
		nodes       INTEGER NOT NULL DEFAULT 0,
		calendar    INTEGER NOT NULL DEFAULT 0,
		recovered   INTEGER NOT NULL DEFAULT 0,
		error       TEXT NOT NULL DEFAULT '',
		started_at  TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS llm_calls (
		id          TEXT PRIMARY KEY,
		run_id      TEXT NOT NULL DEFAULT '',
		task        TEXT NOT NULL
		            CHECK(task IN ('goal_extraction','roadmap')),
		provider    TEXT NOT NULL,
		model       TEXT NOT NULL DEFAULT '',
		attempts    INTEGER NOT NULL DEFAULT 1,
		latency_ms  INTEGER NOT NULL DEFAULT 0,
		success     INTEGER NOT NULL DEFAULT 0,
		error_code  TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,

	`ALTER TABLE roadmap_runs ADD COLUMN schema_version TEXT NOT NULL DEFAULT ''`,

	`CREATE INDEX IF NOT EXISTS idx_llm_calls_created ON llm_calls(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_calls_run ON llm_calls(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_roadmap_runs_started ON roadmap_runs(started_at)`,
}
