// Package migration creates the conversions schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"docconvert/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_conversions",
		SQL: `CREATE TABLE IF NOT EXISTS conversions (
  id          UUID        PRIMARY KEY,
  input_name  TEXT        NOT NULL,
  output_name TEXT        NOT NULL DEFAULT '',
  format      TEXT        NOT NULL DEFAULT '',
  engine      TEXT        NOT NULL DEFAULT '',
  input_size  BIGINT      NOT NULL DEFAULT 0 CHECK (input_size >= 0),
  output_size BIGINT      NOT NULL DEFAULT 0 CHECK (output_size >= 0),
  pages       INTEGER     NOT NULL DEFAULT 0,
  status      TEXT        NOT NULL CHECK (status IN ('done', 'failed')),
  error       TEXT        NOT NULL DEFAULT '',
  duration_ms BIGINT      NOT NULL DEFAULT 0,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_conversions_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions (created_at);`,
	},
	{
		Name: "create_index_conversions_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions (status);`,
	},
}

// EnsureMigrated checks if the 'conversions' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, dbHost string) error {
	start := time.Now()
	logging.Info("db migration check", "component", "database", "db_host", dbHost)

	var exists bool
	query := "SELECT to_regclass('public.conversions') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		logging.Error("db migration failed",
			"component", "database",
			"error", err,
			"db_host", dbHost,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logging.Info("schema already exists, skipping migration",
			"component", "database",
			"db_host", dbHost,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			logging.Error("db migration failed",
				"component", "database",
				"migration_step", step.Name,
				"error", err,
				"db_host", dbHost,
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		logging.Info("db migration step",
			"component", "database",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	logging.Info("db migration success",
		"component", "database",
		"db_host", dbHost,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
