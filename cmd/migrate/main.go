// Command migrate manages the paper store schema.
//
//	migrate [-config FILE] [-path DIR] up|down|status
//
// up applies migrations/ and status prints the applied version with any
// missing paper store tables. down drops both tables and every stored row.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/helixir/paper-aggregator/internal/config"
	"github.com/helixir/paper-aggregator/internal/database"
	"github.com/helixir/paper-aggregator/internal/observability"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("migrate", flag.ContinueOnError)
	configPath := flags.String("config", "", "Path to a config file (default: search standard locations)")
	dir := flags.String("path", "", "Migrations directory (default: database.migration_path)")
	timeout := flags.Duration("timeout", 30*time.Second, "Connection timeout")
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "usage: migrate [flags] up|down|status")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}

	action, err := parseAction(flags.Args())
	if err != nil {
		flags.Usage()
		return err
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *dir == "" {
		*dir = cfg.Database.MigrationPath
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	}).With().Str("component", "migrate").Str("action", action).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	schema, err := database.OpenSchema(db, *dir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := schema.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close schema")
		}
	}()

	var state database.SchemaState
	switch action {
	case "up":
		state, err = schema.Apply()
	case "down":
		state, err = schema.Rollback()
	default:
		state, err = schema.State()
	}
	if err != nil {
		return err
	}

	missing, err := database.MissingTables(ctx, db)
	if err != nil {
		return err
	}
	fmt.Println(statusLine(state, missing))
	return nil
}

// parseAction accepts exactly one of up, down or status.
func parseAction(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected one action, got %d", len(args))
	}
	switch args[0] {
	case "up", "down", "status":
		return args[0], nil
	default:
		return "", fmt.Errorf("unknown action %q", args[0])
	}
}

func statusLine(state database.SchemaState, missing []string) string {
	if len(missing) == 0 {
		return fmt.Sprintf("schema %s, all tables present", state)
	}
	return fmt.Sprintf("schema %s, missing tables: %s", state, strings.Join(missing, ", "))
}
