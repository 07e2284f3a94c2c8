package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rbset/internal/config"
	"github.com/Sumatoshi-tech/rbset/pkg/observability"
	"github.com/Sumatoshi-tech/rbset/pkg/rbtree"
	"github.com/Sumatoshi-tech/rbset/pkg/treeview"
)

const (
	renderCmdUse      = "render [key...]"
	renderCmdShort    = "Build a tree from keys (or the demo lists) and export it"
	renderFormatFlag  = "format"
	renderFormatShort = "f"
	renderFormatUsage = "output format: text, table, json, yaml or html"
	renderTitleFlag   = "title"
	renderTitleUsage  = "chart title for html output"
	renderTitle       = "rbset"
)

// Render output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = treeview.FormatJSON
	FormatYAML  = treeview.FormatYAML
	FormatHTML  = "html"
)

// ErrInvalidKey is returned when a positional argument is not an int32.
var ErrInvalidKey = errors.New("invalid key")

// renderOptions holds the render flags.
type renderOptions struct {
	format  string
	title   string
	noColor bool
}

func newRenderCommand(opts *rootOptions) *cobra.Command {
	ropts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   renderCmdUse,
		Short: renderCmdShort,
		Long: `Build a tree and export it.

With keys given as arguments the tree holds exactly those keys. Without
arguments the demo insert list is applied, followed by the demo remove list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd, observability.ModeRender)
			if err != nil {
				return err
			}

			return runRender(cmd.OutOrStdout(), cfg, args, ropts, logger)
		},
	}

	cmd.Flags().StringVarP(&ropts.format, renderFormatFlag, renderFormatShort, FormatText, renderFormatUsage)
	cmd.Flags().StringVar(&ropts.title, renderTitleFlag, renderTitle, renderTitleUsage)
	cmd.Flags().BoolVar(&ropts.noColor, noColorFlag, false, noColorUsage)

	return cmd
}

func runRender(out io.Writer, cfg *config.Config, args []string, ropts *renderOptions, logger *slog.Logger) error {
	tree, err := buildRenderTree(cfg, args)
	if err != nil {
		return err
	}

	err = tree.Validate()
	if err != nil {
		return fmt.Errorf("validate tree: %w", err)
	}

	logger.Debug("rendering tree", "format", ropts.format, "keys", tree.Len(), "height", tree.Height())

	switch ropts.format {
	case FormatText:
		printer := treeview.NewPrinter(!ropts.noColor && !color.NoColor)

		return printer.WriteLevels(out, tree.Len(), treeview.Levels(tree.Snapshot()))
	case FormatTable:
		_, err = fmt.Fprintln(out, treeview.LevelTable(treeview.Levels(tree.Snapshot())))
		if err != nil {
			return fmt.Errorf("write table: %w", err)
		}

		return nil
	case FormatHTML:
		return treeview.RenderHTML(out, ropts.title, tree.Snapshot())
	default:
		return treeview.Encode(out, treeview.NewDocument(tree), ropts.format)
	}
}

func buildRenderTree(cfg *config.Config, args []string) (*rbtree.RBTree, error) {
	tree, err := newConfiguredTree(cfg)
	if err != nil {
		return nil, err
	}

	if len(args) == 0 {
		_, err = insertKeys(tree, cfg.Demo.Insert)
		if err != nil {
			return nil, err
		}

		removeKeys(tree, cfg.Demo.Remove)

		return tree, nil
	}

	keys := make([]int, 0, len(args))

	for _, arg := range args {
		key, parseErr := strconv.ParseInt(arg, 10, 32)
		if parseErr != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidKey, arg, parseErr)
		}

		keys = append(keys, int(key))
	}

	_, err = insertKeys(tree, keys)
	if err != nil {
		return nil, err
	}

	return tree, nil
}
