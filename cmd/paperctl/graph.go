package main

import (
	"github.com/spf13/cobra"

	"github.com/helixir/paper-aggregator/internal/aggregator"
	"github.com/helixir/paper-aggregator/internal/domain"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Score relationships between papers",
	Long: `graph reads a JSON array of papers (for example the "papers" field of
"paperctl search --json") and prints the node and edge view. Edges are
symmetric and only emitted at or above the configured threshold.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, _ := cmd.Flags().GetString("input")

		var papers []domain.PaperRecord
		if err := readJSON(input, &papers); err != nil {
			return err
		}

		service := aggregator.NewService(
			aggregator.Config{},
			aggregator.NewRegistryFromConfig(cfg, logger),
			nil,
			aggregator.NewScorerFromConfig(cfg.Graph),
			logger,
		)

		result, err := service.BuildGraph(cmd.Context(), papers)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), result.Graph)
	},
}

func init() {
	graphCmd.Flags().StringP("input", "i", "-", "papers JSON file, or - for stdin")

	rootCmd.AddCommand(graphCmd)
}
