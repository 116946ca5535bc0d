// Command paperctl runs the aggregation pipeline from the command line.
//
// It shares configuration with the server (config.yaml and PAPERAGG_*
// environment variables) but never touches the database or Kafka.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/helixir/paper-aggregator/internal/config"
	"github.com/helixir/paper-aggregator/internal/observability"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "paperctl",
	Short:   "Search, relate and summarize papers from the command line",
	Version: version,
	Long: `paperctl fans a query out to the configured paper providers, deduplicates
and ranks the results, and can score relationships between papers or
summarize confidence and usage series.

Logs go to stderr; results go to stdout.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		loaded, err := config.LoadFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		level, _ := cmd.Flags().GetString("log-level")
		logger = observability.NewLogger(observability.LoggingConfig{
			Level:  level,
			Format: "console",
			Output: "stderr",
		}).With().Str("component", "paperctl").Logger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.yaml, ./config or /etc/paper-aggregator)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level for stderr output")
}

// openInput returns stdin for "" or "-", otherwise the named file.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func readJSON(path string, v interface{}) error {
	r, err := openInput(path)
	if err != nil {
		return err
	}
	defer r.Close()
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
