// Command server runs the paper aggregator REST API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-aggregator/internal/aggregator"
	"github.com/helixir/paper-aggregator/internal/config"
	"github.com/helixir/paper-aggregator/internal/database"
	"github.com/helixir/paper-aggregator/internal/events"
	"github.com/helixir/paper-aggregator/internal/observability"
	"github.com/helixir/paper-aggregator/internal/repository"
	httpserver "github.com/helixir/paper-aggregator/internal/server/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("paper-aggregator server starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	publisher := events.NewPublisher(cfg.Kafka, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	opts := []aggregator.Option{
		aggregator.WithPublisher(publisher, events.NewEmitter(events.DefaultServiceName)),
	}
	if metrics != nil {
		opts = append(opts, aggregator.WithMetrics(metrics))
	}

	deps := httpserver.Deps{Metrics: metrics}

	if cfg.Database.Enabled {
		db, err := openDatabase(ctx, &cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		papers := repository.NewPgPaperRepository(db)
		opts = append(opts,
			aggregator.WithPaperStore(papers),
			aggregator.WithEdgeStore(repository.NewPgEdgeRepository(db)),
		)
		deps.Papers = papers
		deps.Health = db
	} else {
		logger.Warn().Msg("database disabled, results will not be persisted")
	}

	registry := aggregator.NewRegistryFromConfig(cfg, logger)
	if len(registry.EnabledSources()) == 0 {
		return errors.New("no paper sources enabled")
	}
	service := aggregator.NewServiceFromConfig(cfg, registry, logger, opts...)

	httpCfg := httpserver.Config{
		Address:      cfg.Server.HTTPAddress(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * time.Minute,
	}
	httpSrv := httpserver.NewServer(httpCfg, service, deps, logger)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	errCh := make(chan error, 2)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().
		Str("http_address", httpCfg.Address).
		Int("sources", len(registry.EnabledSources())).
		Bool("database", cfg.Database.Enabled).
		Bool("kafka", cfg.Kafka.Enabled)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("paper-aggregator is ready")

	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down paper-aggregator")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("paper-aggregator shutdown complete")
	return nil
}

// openDatabase connects to the paper store and applies its schema when
// auto-run is enabled.
func openDatabase(ctx context.Context, cfg *config.DatabaseConfig, logger zerolog.Logger) (*database.DB, error) {
	db, err := database.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if !cfg.MigrationAutoRun {
		return db, nil
	}

	if _, err := database.Migrate(db, cfg.MigrationPath, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
