package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codescope/codescope/internal/ui"
)

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every chunk from the index",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}
	return cmd
}

func runClear(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ix, err := newIndexer(cfg)
	if err != nil {
		return err
	}

	removed := ix.Store().Count()
	if err := ix.Clear(); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	ui.NewPrinter(cmd.OutOrStdout(), flagNoColor).Successf("Removed %d chunks", removed)
	return nil
}
