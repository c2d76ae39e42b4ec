package insights

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE insights_status AS ENUM ('pending', 'transcribing', 'summarizing', 'complete', 'failed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS session_insights (
		room_id TEXT PRIMARY KEY,
		transcript TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		insights TEXT[] NOT NULL DEFAULT '{}',
		mood TEXT NOT NULL DEFAULT '',
		goals TEXT[] NOT NULL DEFAULT '{}',
		warnings TEXT[] NOT NULL DEFAULT '{}',
		status insights_status NOT NULL DEFAULT 'pending',
		failure_reason TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_session_insights_status ON session_insights (status)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
