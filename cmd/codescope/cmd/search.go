package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codescope/codescope/internal/search"
	"github.com/codescope/codescope/internal/ui"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit    int
	minScore float64
	filePath string
	language string
	format   string // text or json
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed codebase",
		Long: `Search the indexed codebase with a natural-language query.

Examples:
  codescope search "authentication middleware"
  codescope search "parse config file" --language go --limit 5
  codescope search "error handling" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", search.DefaultMinScore, "Minimum similarity score")
	cmd.Flags().StringVarP(&opts.filePath, "path", "p", "", "Filter by file path prefix")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Filter by language (e.g. go, python)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, _, err := newSearch(cfg)
	if err != nil {
		return err
	}

	locations, err := engine.Find(cmd.Context(), query, opts.limit, opts.minScore, opts.filePath, opts.language)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(locations)
	}

	ui.NewPrinter(cmd.OutOrStdout(), flagNoColor).Results(locations)
	return nil
}
