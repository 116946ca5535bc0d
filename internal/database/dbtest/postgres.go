//go:build integration

// Package dbtest starts a throwaway PostgreSQL container for integration tests.
package dbtest

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/helixir/paper-aggregator/internal/config"
	"github.com/helixir/paper-aggregator/internal/database"
)

const image = "postgres:16-alpine"

// MigrationsPath returns the absolute path of the repository migrations directory.
func MigrationsPath(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// StartPostgres runs a PostgreSQL container and returns a connected pool.
// When migrate is true the repository migrations are applied first.
// The container and pool are released through t.Cleanup.
func StartPostgres(t *testing.T, migrate bool) *database.DB {
	t.Helper()

	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, image,
		tcpostgres.WithDatabase("paper_aggregator"),
		tcpostgres.WithUsername("paperagg"),
		tcpostgres.WithPassword("paperagg"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	connCfg, err := pgx.ParseConfig(connStr)
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Enabled:           true,
		Host:              connCfg.Host,
		Port:              int(connCfg.Port),
		User:              "paperagg",
		Password:          "paperagg",
		Name:              "paper_aggregator",
		SSLMode:           "disable",
		MaxConns:          5,
		MinConns:          1,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: 30 * time.Second,
		ConnectTimeout:    10 * time.Second,
	}

	db, err := database.New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	if migrate {
		_, err := database.Migrate(db, MigrationsPath(t), zerolog.Nop())
		require.NoError(t, err)
	}

	return db
}
