package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codescope/codescope/internal/ui"
)

func newStatsCmd() *cobra.Command {
	var format string
	var explain bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, format, explain)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&explain, "explain", false, "Print a markdown summary of the codebase")

	return cmd
}

func runStats(cmd *cobra.Command, format string, explain bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, ix, err := newSearch(cfg)
	if err != nil {
		return err
	}

	if explain {
		fmt.Fprint(cmd.OutOrStdout(), engine.ExplainCodebase(10))
		return nil
	}

	stats := ix.Stats()
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	ui.NewPrinter(cmd.OutOrStdout(), flagNoColor).Stats(&stats)
	return nil
}
