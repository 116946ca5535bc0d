package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helixir/paper-aggregator/internal/analytics"
	"github.com/helixir/paper-aggregator/internal/domain"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Summarize confidence and usage series",
}

var confidenceCmd = &cobra.Command{
	Use:   "confidence",
	Short: "Moving average and drift of a dated confidence series",
	Long: `confidence reads a JSON array of {"date","value","count"} points, orders
them by date and prints each point with its trailing moving average plus
the drift between the last two points.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, _ := cmd.Flags().GetString("input")
		window, _ := cmd.Flags().GetInt("window")

		var points []domain.TimeSeriesPoint
		if err := readJSON(input, &points); err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), analytics.ConfidenceSummary(points, window))
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Normalize named counters against the busiest one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, _ := cmd.Flags().GetString("input")

		var counts []analytics.UsageCount
		if err := readJSON(input, &counts); err != nil {
			return err
		}
		for i, c := range counts {
			if c.Name == "" || c.Count < 0 {
				return fmt.Errorf("counter %d: name is required and count must be non-negative", i)
			}
		}
		return writeJSON(cmd.OutOrStdout(), analytics.UsageShares(counts))
	},
}

func init() {
	confidenceCmd.Flags().StringP("input", "i", "-", "points JSON file, or - for stdin")
	confidenceCmd.Flags().Int("window", analytics.DefaultWindow, "moving average window")
	usageCmd.Flags().StringP("input", "i", "-", "counts JSON file, or - for stdin")

	analyticsCmd.AddCommand(confidenceCmd, usageCmd)
	rootCmd.AddCommand(analyticsCmd)
}
