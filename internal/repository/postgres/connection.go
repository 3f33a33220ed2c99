package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"lexlib/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Catalogues    string
	DocumentTypes string
	Documents     string
	Materials     string
	Annotations   string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Catalogues:    fmt.Sprintf("%scatalogues", prefix),
		DocumentTypes: fmt.Sprintf("%sdocument_types", prefix),
		Documents:     fmt.Sprintf("%sdocuments", prefix),
		Materials:     fmt.Sprintf("%smaterials", prefix),
		Annotations:   fmt.Sprintf("%sannotations", prefix),
	}
}

// All returns every table name in dependency order (referenced tables first)
func (t *TableNames) All() []string {
	return []string{t.Catalogues, t.DocumentTypes, t.Documents, t.Materials, t.Annotations}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// Port 6543 is the Supabase transaction pooler (PgBouncer), which does not support
// prepared statements. Unless default_query_exec_mode is set explicitly in the
// connection string, the pool switches to QueryExecModeCacheDescribe there.
//
// Table prefixes are interpolated with fmt.Sprintf before the statement reaches the
// server, so each environment gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 5

	// Explicit default_query_exec_mode in the URL wins over auto-detection
	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
// This enables repositories to automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	// Check if there's a transaction in the context
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	// No transaction, use the pool
	return pool
}
