package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codescope/codescope/internal/search"
)

func newContextCmd() *cobra.Command {
	var maxTokens int
	var minScore float64

	cmd := &cobra.Command{
		Use:   "context <query>",
		Short: "Assemble relevant code into a context block",
		Long: `Collect the most relevant chunks for a query and print them as
a single formatted block bounded by an approximate token budget.

Examples:
  codescope context "how are requests authenticated"
  codescope context "database migrations" --max-tokens 1000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runContext(cmd, query, maxTokens, minScore)
		},
	}

	cmd.Flags().IntVar(&maxTokens, "max-tokens", 2000, "Approximate token budget")
	cmd.Flags().Float64Var(&minScore, "min-score", search.DefaultMinScore, "Minimum similarity score")

	return cmd
}

func runContext(cmd *cobra.Command, query string, maxTokens int, minScore float64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, _, err := newSearch(cfg)
	if err != nil {
		return err
	}

	block, err := engine.GetContext(cmd.Context(), query, maxTokens, minScore)
	if err != nil {
		return fmt.Errorf("context assembly failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), block)
	return nil
}
