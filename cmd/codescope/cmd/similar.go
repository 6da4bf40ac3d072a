package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codescope/codescope/internal/ui"
)

func newSimilarCmd() *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "similar <file:line>",
		Short: "Find code similar to a location",
		Long: `Find code similar to the chunk containing the given line.

Examples:
  codescope similar src/auth.py:42
  codescope similar internal/server/handler.go:120 --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath, line, err := parseLocation(args[0])
			if err != nil {
				return err
			}
			return runSimilar(cmd, filePath, line, limit, format)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of results")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json")

	return cmd
}

// parseLocation splits a "path:line" argument.
func parseLocation(arg string) (string, int, error) {
	idx := strings.LastIndex(arg, ":")
	if idx <= 0 || idx == len(arg)-1 {
		return "", 0, fmt.Errorf("expected <file:line>, got %q", arg)
	}
	line, err := strconv.Atoi(arg[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid line number in %q", arg)
	}
	return arg[:idx], line, nil
}

func runSimilar(cmd *cobra.Command, filePath string, line, limit int, format string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, _, err := newSearch(cfg)
	if err != nil {
		return err
	}

	locations, err := engine.FindSimilar(cmd.Context(), filePath, line, limit)
	if err != nil {
		return fmt.Errorf("similarity search failed: %w", err)
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(locations)
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), flagNoColor)
	if len(locations) == 0 {
		printer.Warnf("No indexed chunk covers %s:%d", filePath, line)
		return nil
	}
	printer.Results(locations)
	return nil
}
