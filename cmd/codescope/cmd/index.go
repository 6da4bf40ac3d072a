package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codescope/codescope/internal/ui"
)

func newIndexCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index a directory tree",
		Long: `Index every supported source file under a directory.

Unchanged files are skipped on re-runs unless --force is given.

Examples:
  codescope index .
  codescope index ./src --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			return runIndex(cmd, root, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Re-index files even if unchanged")

	return cmd
}

func runIndex(cmd *cobra.Command, root string, force bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ix, err := newIndexer(cfg)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), flagNoColor)

	lastPercent := -1
	stats, err := ix.IndexDirectory(cmd.Context(), root, force, func(fraction float64) {
		percent := int(fraction * 100)
		if percent != lastPercent {
			fmt.Fprintf(cmd.OutOrStdout(), "\rIndexing... %3d%%", percent)
			lastPercent = percent
		}
	})
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	if lastPercent >= 0 {
		fmt.Fprintln(cmd.OutOrStdout())
	}

	printer.Successf("Indexed %d files (%d chunks) in %s",
		stats.TotalFiles, stats.TotalChunks, stats.LastDuration.Round(time.Millisecond))
	return nil
}
