package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rbset/internal/config"
	"github.com/Sumatoshi-tech/rbset/pkg/observability"
	"github.com/Sumatoshi-tech/rbset/pkg/rbtree"
	"github.com/Sumatoshi-tech/rbset/pkg/safeconv"
	"github.com/Sumatoshi-tech/rbset/pkg/treeview"
)

const (
	demoCmdUse   = "demo"
	demoCmdShort = "Insert and remove the configured keys, printing the tree after each phase"
)

func newDemoCommand(opts *rootOptions) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   demoCmdUse,
		Short: demoCmdShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd, observability.ModeDemo)
			if err != nil {
				return err
			}

			printer := treeview.NewPrinter(!noColor && !color.NoColor)

			return runDemo(cmd.OutOrStdout(), cfg, printer, logger)
		},
	}

	cmd.Flags().BoolVar(&noColor, noColorFlag, false, noColorUsage)

	return cmd
}

func runDemo(out io.Writer, cfg *config.Config, printer *treeview.Printer, logger *slog.Logger) error {
	tree, err := newConfiguredTree(cfg)
	if err != nil {
		return err
	}

	added, err := insertKeys(tree, cfg.Demo.Insert)
	if err != nil {
		return err
	}

	logger.Debug("insert phase done", "requested", len(cfg.Demo.Insert), "added", added, "stats", tree.Stats())

	err = printPhase(out, tree, printer)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("write separator: %w", err)
	}

	removed := removeKeys(tree, cfg.Demo.Remove)

	logger.Debug("remove phase done", "requested", len(cfg.Demo.Remove), "removed", removed, "stats", tree.Stats())

	err = printPhase(out, tree, printer)
	if err != nil {
		return err
	}

	logger.Info("demo complete",
		"keys", tree.Len(),
		"height", tree.Height(),
		"black_height", tree.BlackHeight(),
		"rotations", tree.Stats().Rotations,
	)

	return nil
}

// newConfiguredTree creates an empty set whose arena honors the tree section.
func newConfiguredTree(cfg *config.Config) (*rbtree.RBTree, error) {
	alloc := rbtree.NewAllocator()
	alloc.MaxNodes = cfg.Tree.MaxNodes
	alloc.HibernationThreshold = cfg.Tree.HibernationThreshold

	tree, err := rbtree.NewRBTree(alloc)
	if err != nil {
		return nil, fmt.Errorf("create tree: %w", err)
	}

	return tree, nil
}

func insertKeys(tree *rbtree.RBTree, keys []int) (int, error) {
	added := 0

	for _, key := range keys {
		ok, err := tree.Insert(safeconv.MustIntToInt32(key))
		if err != nil {
			return added, fmt.Errorf("insert %d: %w", key, err)
		}

		if ok {
			added++
		}
	}

	return added, nil
}

func removeKeys(tree *rbtree.RBTree, keys []int) int {
	removed := 0

	for _, key := range keys {
		if tree.Delete(safeconv.MustIntToInt32(key)) {
			removed++
		}
	}

	return removed
}

func printPhase(out io.Writer, tree *rbtree.RBTree, printer *treeview.Printer) error {
	err := tree.Validate()
	if err != nil {
		return fmt.Errorf("validate tree: %w", err)
	}

	return printer.WriteLevels(out, tree.Len(), treeview.Levels(tree.Snapshot()))
}
