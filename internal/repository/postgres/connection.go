package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"quarry/internal/domain/repositories"
)

// RepositoryConfig holds the shared dependencies of the postgres
// repository implementations.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names.
type TableNames struct {
	Users            string
	Organizations    string
	Chats            string
	Messages         string
	MetricAssets     string
	DashboardAssets  string
	AssetPermissions string
	UserFavorites    string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:            fmt.Sprintf("%susers", prefix),
		Organizations:    fmt.Sprintf("%sorganizations", prefix),
		Chats:            fmt.Sprintf("%schats", prefix),
		Messages:         fmt.Sprintf("%smessages", prefix),
		MetricAssets:     fmt.Sprintf("%smetric_assets", prefix),
		DashboardAssets:  fmt.Sprintf("%sdashboard_assets", prefix),
		AssetPermissions: fmt.Sprintf("%sasset_permissions", prefix),
		UserFavorites:    fmt.Sprintf("%suser_favorites", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool.
//
// When the connection goes through a transaction pooler (port 6543),
// prepared statements break, so the exec mode is downgraded to
// cache_describe: it keeps the extended protocol (needed for proper
// JSONB encoding of map[string]interface{}) without creating server-side
// prepared statements. An explicit default_query_exec_mode in the
// connection string takes precedence.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for pooler compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction from the context when one is
// present, otherwise the pool. Repositories use this to transparently
// join ambient transactions.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
