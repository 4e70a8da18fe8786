package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the builder tables and indexes if they don't exist
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ` + tables.Sessions + ` (
			id TEXT PRIMARY KEY,
			prompt TEXT NOT NULL,
			template TEXT NOT NULL,
			llm_context JSONB NOT NULL DEFAULT '[]',
			tree JSONB NOT NULL DEFAULT '[]',
			batches INTEGER NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Messages + ` (
			session_id TEXT NOT NULL REFERENCES ` + tables.Sessions + `(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (session_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + tables.Steps + ` (
			session_id TEXT NOT NULL REFERENCES ` + tables.Sessions + `(id) ON DELETE CASCADE,
			batch INTEGER NOT NULL,
			sequence_index INTEGER NOT NULL,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			path TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			command TEXT NOT NULL DEFAULT '',
			action_type TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (session_id, batch, sequence_index)
		)`,
		`CREATE INDEX IF NOT EXISTS ` + indexName(tables.Sessions, "updated_at") +
			` ON ` + tables.Sessions + `(updated_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the builder tables, children first
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	all := tables.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+all[i]+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", all[i], err)
		}
	}
	return nil
}

func indexName(table, column string) string {
	return "idx_" + strings.ReplaceAll(table, ".", "_") + "_" + column
}
