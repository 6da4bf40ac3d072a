// Package cmd provides the CLI commands for codescope.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/codescope/codescope/internal/config"
	"github.com/codescope/codescope/internal/embed"
	"github.com/codescope/codescope/internal/index"
	"github.com/codescope/codescope/internal/logging"
	"github.com/codescope/codescope/internal/search"
	"github.com/codescope/codescope/pkg/version"
)

// Global flags shared by every command.
var (
	flagConfig  string
	flagNoColor bool
	flagDebug   bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the codescope CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codescope",
		Short: "Local semantic code search",
		Long: `Codescope indexes a codebase into embedded chunks and answers
natural-language queries over it.

Run 'codescope index .' to build an index, then 'codescope search'
to query it.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("codescope version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to config file (default .codescope.yaml in project root)")
	cmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
	}

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newSimilarCmd())
	cmd.AddCommand(newContextCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newClearCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	if flagDebug {
		logCfg.Level = "debug"
	} else {
		logCfg.Level = "warn"
	}

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup
	return nil
}

// loadConfig resolves configuration for the working directory, or from
// the --config flag when given.
func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		return config.Load(flagConfig)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.LoadProject(cwd)
}

// newIndexer wires an embedder and an indexer from configuration.
func newIndexer(cfg *config.Config) (*index.Indexer, error) {
	embedder, err := embed.New(embed.Options{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BaseURL:    cfg.Embedding.BaseURL,
		Timeout:    cfg.Embedding.Timeout,
		CacheSize:  cfg.Embedding.CacheSize,
		CachePath:  cfg.Embedding.CachePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	slog.Debug("embedder initialized",
		slog.String("provider", cfg.Embedding.Provider),
		slog.String("model", embedder.ModelName()),
		slog.Int("dimensions", embedder.Dimensions()))

	ix, err := index.New(cfg, embedder, nil)
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}
	return ix, nil
}

// newSearch builds the full search stack from configuration.
func newSearch(cfg *config.Config) (*search.SemanticSearch, *index.Indexer, error) {
	ix, err := newIndexer(cfg)
	if err != nil {
		return nil, nil, err
	}
	return search.New(ix), ix, nil
}
