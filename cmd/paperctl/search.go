package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/helixir/paper-aggregator/internal/aggregator"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search every enabled provider and print ranked papers",
	Long: `search queries the enabled providers concurrently, merges duplicate titles
keeping the record from the most trusted provider, and prints at most
--limit papers. Queries shorter than three characters print nothing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		registry := aggregator.NewRegistryFromConfig(cfg, logger)
		service := aggregator.NewServiceFromConfig(cfg, registry, logger)

		result, err := service.Search(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, result)
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tYEAR\tSOURCE\tTITLE\tURL")
		for i, p := range result.Papers {
			year := "-"
			if p.Year > 0 {
				year = fmt.Sprint(p.Year)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, year, p.Source.DisplayName(), p.Title, p.URL)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		for _, o := range result.Sources {
			if o.Error != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", o.Source.DisplayName(), o.Error)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum number of papers (default from config)")
	searchCmd.Flags().Bool("json", false, "output the full search result as JSON")

	rootCmd.AddCommand(searchCmd)
}
