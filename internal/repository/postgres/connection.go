// Package postgres holds the shared pgx plumbing for the postgres repositories.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeforge/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds the environment-prefixed table names
type TableNames struct {
	Sessions string
	Messages string
	Steps    string
}

// NewTableNames creates table names with the given prefix ("dev_", "test_", ...)
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Sessions: fmt.Sprintf("%sbuilder_sessions", prefix),
		Messages: fmt.Sprintf("%sbuilder_messages", prefix),
		Steps:    fmt.Sprintf("%sbuilder_steps", prefix),
	}
}

// All lists the tables parents first
func (t *TableNames) All() []string {
	return []string{t.Sessions, t.Messages, t.Steps}
}

// CreateConnectionPool opens and pings a pgx pool.
//
// Port 6543 is a transaction-mode PgBouncer, which cannot hold prepared
// statements; unless the URL sets default_query_exec_mode explicitly the pool
// switches to cache_describe there.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction carried by ctx, or pool when there is none
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
