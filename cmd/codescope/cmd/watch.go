package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codescope/codescope/internal/ui"
	"github.com/codescope/codescope/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Keep the index in sync with file changes",
		Long: `Index a directory, then watch it for changes and re-index
modified files automatically. Runs until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			return runWatch(cmd, root, debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounceWindow, "How long to coalesce rapid changes per file")

	return cmd
}

func runWatch(cmd *cobra.Command, root string, debounce time.Duration) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ix, err := newIndexer(cfg)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), flagNoColor)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bring the index up to date before watching.
	stats, err := ix.IndexDirectory(ctx, root, false, nil)
	if err != nil {
		return fmt.Errorf("initial indexing failed: %w", err)
	}
	printer.Successf("Indexed %d files (%d chunks), watching %s for changes...",
		stats.TotalFiles, stats.TotalChunks, root)

	w, err := watcher.New(ix, watcher.Options{
		Root:           root,
		Extensions:     cfg.Files.Extensions,
		IgnorePatterns: cfg.Files.IgnorePatterns,
		DebounceWindow: debounce,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	return w.Run(ctx)
}
