// Package commands implements CLI command handlers for rbset.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rbset/internal/config"
	"github.com/Sumatoshi-tech/rbset/pkg/observability"
	"github.com/Sumatoshi-tech/rbset/pkg/version"
)

const (
	configFlag   = "config"
	verboseFlag  = "verbose"
	quietFlag    = "quiet"
	noColorFlag  = "no-color"
	noColorUsage = "disable colored output"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
	quiet      bool
}

// NewRootCommand builds the rbset command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "rbset",
		Short: "rbset - ordered integer set on an arena red-black tree",
		Long: `rbset stores distinct int32 keys in a red-black tree whose nodes live in
an index-addressed arena.

Commands:
  demo      Insert and remove the configured key lists, printing the tree
  bench     Run a seeded random workload over many sets
  render    Export a tree as text, table, JSON, YAML or HTML`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, configFlag, "", "config file (default is ./.rbset.yaml or $HOME/.rbset.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, verboseFlag, "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, quietFlag, "q", false, "suppress output")

	rootCmd.AddCommand(newDemoCommand(opts))
	rootCmd.AddCommand(newBenchCommand(opts))
	rootCmd.AddCommand(newRenderCommand(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "rbset %s\n", version.String())

			return err
		},
	}
}

// load reads the configuration and builds a logger writing to the command's stderr.
// Verbose lowers the configured level to debug, quiet raises it to error.
func (opts *rootOptions) load(cmd *cobra.Command, mode observability.AppMode) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case opts.quiet:
		level = slog.LevelError
	case opts.verbose:
		level = slog.LevelDebug
	}

	logCfg := observability.DefaultLogConfig(cmd.ErrOrStderr(), mode)
	logCfg.Format = cfg.Logging.Format
	logCfg.Level = level

	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, logger, nil
}
