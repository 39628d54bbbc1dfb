package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_meetings",
		SQL: `CREATE TABLE IF NOT EXISTS meetings (
  id                   UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  account_id           TEXT        NOT NULL,
  title                TEXT        NOT NULL,
  participants         JSONB       NOT NULL DEFAULT '[]'::jsonb,
  status               TEXT        NOT NULL DEFAULT 'recording',
  max_duration_minutes INTEGER     NOT NULL CHECK (max_duration_minutes > 0),
  started_at           TIMESTAMPTZ,
  transcript           TEXT,
  summary              TEXT,
  usage_counted        BOOLEAN     NOT NULL DEFAULT FALSE,
  transcribed_count    INTEGER     NOT NULL DEFAULT 0,
  errored_count        INTEGER     NOT NULL DEFAULT 0,
  created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_fragments",
		SQL: `CREATE TABLE IF NOT EXISTS fragments (
  id              UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  meeting_id      UUID        NOT NULL REFERENCES meetings (id) ON DELETE CASCADE,
  sequence_number INTEGER     NOT NULL CHECK (sequence_number >= 0),
  storage_ref     TEXT        NOT NULL UNIQUE,
  size            BIGINT      NOT NULL CHECK (size >= 0),
  content_type    TEXT        NOT NULL,
  status          TEXT        NOT NULL DEFAULT 'uploaded',
  transcript_text TEXT,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (meeting_id, sequence_number)
);`,
	},
	{
		Name: "create_index_meetings_account_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_meetings_account_created ON meetings (account_id, created_at DESC);`,
	},
	{
		Name: "create_index_meetings_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_meetings_status ON meetings (status);`,
	},
	{
		Name: "create_index_fragments_meeting_seq",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_fragments_meeting_seq ON fragments (meeting_id, sequence_number);`,
	},
}

// EnsureMigrated checks if the 'meetings' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.meetings') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
