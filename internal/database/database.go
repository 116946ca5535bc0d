// Package database owns the PostgreSQL pool and the schema of the paper
// store: the papers and paper_edges tables written by the repositories.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-aggregator/internal/config"
)

const (
	// HealthCheckTimeout bounds the readiness query.
	HealthCheckTimeout = 5 * time.Second

	// ApplicationName is reported to PostgreSQL for every pooled connection.
	ApplicationName = "paper-aggregator"
)

// SchemaTables are the tables the paper store needs before it can serve.
var SchemaTables = []string{"papers", "paper_edges"}

// Health states reported by DB.Health.
const (
	StatusHealthy       = "healthy"
	StatusUnhealthy     = "unhealthy"
	StatusSchemaMissing = "schema_missing"
)

// HealthStatus is the readiness of the paper store.
type HealthStatus struct {
	Status        string   `json:"status"`
	Error         string   `json:"error,omitempty"`
	MissingTables []string `json:"missing_tables,omitempty"`
	TotalConns    int32    `json:"total_conns"`
	AcquiredConns int32    `json:"acquired_conns"`
	IdleConns     int32    `json:"idle_conns"`
	MaxConns      int32    `json:"max_conns"`
}

// Healthy reports whether the database answered and every schema table exists.
func (h HealthStatus) Healthy() bool {
	return h.Status == StatusHealthy
}

// DBTX is satisfied by *DB, pgx.Tx and pgxmock pools. Repositories and
// schema checks take it instead of a concrete pool.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var _ DBTX = (*DB)(nil)

// DB is the paper store connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// PoolConfig builds the pgxpool configuration for cfg.
func PoolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	poolConfig.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	return poolConfig, nil
}

// New opens the pool and pings it once.
func New(ctx context.Context, cfg *config.DatabaseConfig, logger zerolog.Logger) (*DB, error) {
	poolConfig, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger = logger.With().Str("database", cfg.Name).Logger()
	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Int32("max_conns", cfg.MaxConns).
		Msg("paper store pool established")

	return &DB{pool: pool, logger: logger}, nil
}

// Close closes the pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
		db.logger.Info().Msg("paper store pool closed")
	}
}

// Health runs the schema check against the pool and adds pool statistics.
func (db *DB) Health(ctx context.Context) HealthStatus {
	health := checkHealth(ctx, db)

	stat := db.pool.Stat()
	health.TotalConns = stat.TotalConns()
	health.AcquiredConns = stat.AcquiredConns()
	health.IdleConns = stat.IdleConns()
	health.MaxConns = stat.MaxConns()
	return health
}

// checkHealth reports StatusUnhealthy when the query fails and
// StatusSchemaMissing when any of SchemaTables is absent.
func checkHealth(ctx context.Context, q DBTX) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	missing, err := MissingTables(ctx, q)
	switch {
	case err != nil:
		return HealthStatus{Status: StatusUnhealthy, Error: err.Error()}
	case len(missing) > 0:
		return HealthStatus{Status: StatusSchemaMissing, MissingTables: missing}
	default:
		return HealthStatus{Status: StatusHealthy}
	}
}

const missingTablesQuery = `
	SELECT name FROM unnest($1::text[]) AS name
	WHERE to_regclass(name) IS NULL
	ORDER BY name`

// MissingTables returns the entries of SchemaTables that do not exist, in
// name order. An empty result means the paper store schema is in place.
func MissingTables(ctx context.Context, q DBTX) ([]string, error) {
	rows, err := q.Query(ctx, missingTablesQuery, SchemaTables)
	if err != nil {
		return nil, fmt.Errorf("failed to check schema tables: %w", err)
	}
	defer rows.Close()

	missing := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		missing = append(missing, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to check schema tables: %w", err)
	}
	return missing, nil
}

// Exec executes a statement on the pool.
func (db *DB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return db.pool.Exec(ctx, sql, args...)
}

// QueryRow executes a query expected to return at most one row.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return db.pool.QueryRow(ctx, sql, args...)
}

// Query executes a query that returns rows.
func (db *DB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return db.pool.Query(ctx, sql, args...)
}

// SendBatch sends queued upserts in a single round trip.
func (db *DB) SendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults {
	return db.pool.SendBatch(ctx, batch)
}
