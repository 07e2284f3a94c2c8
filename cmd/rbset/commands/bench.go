package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rbset/internal/config"
	"github.com/Sumatoshi-tech/rbset/pkg/observability"
	"github.com/Sumatoshi-tech/rbset/pkg/rbtree"
	"github.com/Sumatoshi-tech/rbset/pkg/safeconv"
)

const (
	benchCmdUse      = "bench"
	benchCmdShort    = "Run a seeded random insert/delete/contains workload over many sets"
	benchMetricsFlag = "metrics"
	benchMetricsUse  = "print the collected metrics in Prometheus text format"
	benchSetPrefix   = "set-"
)

// ErrArenaDrift is returned when booting the shards does not restore the slot count.
var ErrArenaDrift = errors.New("arena slot count changed across hibernation")

// Operation outcomes recorded as metric results.
const (
	resultAdded     = "added"
	resultDuplicate = "duplicate"
	resultRemoved   = "removed"
	resultAbsent    = "absent"
	resultHit       = "hit"
	resultMiss      = "miss"
)

// benchReport summarizes one workload run.
type benchReport struct {
	Outcomes        map[string]int
	Failed          int
	Sets            int
	Keys            int
	Slots           int
	HibernatedBytes int
	Elapsed         time.Duration
	Hibernated      bool
}

func newBenchCommand(opts *rootOptions) *cobra.Command {
	var printMetrics bool

	cmd := &cobra.Command{
		Use:   benchCmdUse,
		Short: benchCmdShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd, observability.ModeBench)
			if err != nil {
				return err
			}

			return runBenchCommand(cmd.Context(), cmd.OutOrStdout(), cfg, logger, printMetrics)
		},
	}

	cmd.Flags().BoolVar(&printMetrics, benchMetricsFlag, false, benchMetricsUse)

	return cmd
}

func runBenchCommand(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger, printMetrics bool) error {
	provider, err := observability.NewPrometheusProvider()
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := provider.Shutdown(context.WithoutCancel(ctx))
		if shutdownErr != nil {
			logger.Warn("metrics shutdown failed", "error", shutdownErr)
		}
	}()

	metrics, err := observability.NewTreeMetrics(provider.Meter())
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	workload, err := newBenchWorkload(cfg)
	if err != nil {
		return err
	}

	reg, err := metrics.ObserveSize(workload.size)
	if err != nil {
		return err
	}

	defer func() {
		unregErr := reg.Unregister()
		if unregErr != nil {
			logger.Warn("size callback unregister failed", "error", unregErr)
		}
	}()

	report, err := workload.run(ctx, cfg, metrics, logger)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, benchTable(report))
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if !printMetrics {
		return nil
	}

	return provider.WriteText(out)
}

// benchWorkload is a group of sets sharing a sharded allocator.
type benchWorkload struct {
	sharded *rbtree.ShardedAllocator
	sets    []*rbtree.RBTree
}

func newBenchWorkload(cfg *config.Config) (*benchWorkload, error) {
	sharded := rbtree.NewShardedAllocator(cfg.Tree.Shards, cfg.Tree.HibernationThreshold, cfg.Tree.MaxNodes)
	sets := make([]*rbtree.RBTree, cfg.Bench.Sets)

	for idx := range sets {
		set, err := sharded.NewSet(fmt.Sprintf("%s%d", benchSetPrefix, idx))
		if err != nil {
			return nil, fmt.Errorf("create set %d: %w", idx, err)
		}

		sets[idx] = set
	}

	return &benchWorkload{sharded: sharded, sets: sets}, nil
}

// size must not be called while the shards are hibernated.
func (wl *benchWorkload) size() observability.SizeReport {
	return observability.SizeReport{Keys: totalKeys(wl.sets), ArenaSlots: wl.sharded.Used()}
}

// run drives the sets with a seeded stream of operations. Every set is validated at
// the end, and again after a hibernate/boot round trip when enabled.
func (wl *benchWorkload) run(ctx context.Context, cfg *config.Config, metrics *observability.TreeMetrics, logger *slog.Logger) (benchReport, error) {
	sets := wl.sets
	report := benchReport{Outcomes: map[string]int{}, Sets: len(sets)}
	rng := rand.New(rand.NewSource(cfg.Bench.Seed)) //nolint:gosec // reproducible workload, not crypto.
	keyRange := safeconv.MustIntToInt32(cfg.Bench.KeyRange)
	deleteRatio := cfg.Bench.InsertRatio + (1-cfg.Bench.InsertRatio)/2
	start := time.Now()

	for range cfg.Bench.Operations {
		set := sets[rng.Intn(len(sets))]
		key := rng.Int31n(keyRange)
		dice := rng.Float64()

		var opErr error

		switch {
		case dice < cfg.Bench.InsertRatio:
			opErr = benchInsert(ctx, set, key, metrics, &report)
		case dice < deleteRatio:
			benchDelete(ctx, set, key, metrics, &report)
		default:
			benchContains(ctx, set, key, metrics, &report)
		}

		if opErr != nil {
			return benchReport{}, opErr
		}
	}

	report.Elapsed = time.Since(start)

	for idx, set := range sets {
		metrics.RecordStats(ctx, rbtree.Stats{}, set.Stats())

		validateErr := set.Validate()
		if validateErr != nil {
			return benchReport{}, fmt.Errorf("validate %s%d: %w", benchSetPrefix, idx, validateErr)
		}
	}

	report.Keys = totalKeys(sets)
	report.Slots = wl.sharded.Used()

	logger.Debug("workload done", "operations", cfg.Bench.Operations, "elapsed", report.Elapsed, "failed", report.Failed)

	if cfg.Bench.Hibernate {
		err := hibernateRoundTrip(wl.sharded, sets, &report, logger)
		if err != nil {
			return benchReport{}, err
		}
	}

	logger.Info("bench complete", "sets", report.Sets, "keys", report.Keys, "slots", report.Slots)

	return report, nil
}

// benchInsert tolerates arena exhaustion, counting it as a failed operation.
func benchInsert(ctx context.Context, set *rbtree.RBTree, key int32, metrics *observability.TreeMetrics, report *benchReport) error {
	start := time.Now()

	added, err := set.Insert(key)
	if err != nil {
		if !errors.Is(err, rbtree.ErrAllocatorExhausted) {
			return fmt.Errorf("insert %d: %w", key, err)
		}

		metrics.RecordError(ctx, observability.OpInsert)

		report.Failed++

		return nil
	}

	result := resultDuplicate
	if added {
		result = resultAdded
	}

	metrics.RecordOperation(ctx, observability.OpInsert, result, time.Since(start))

	report.Outcomes[result]++

	return nil
}

func benchDelete(ctx context.Context, set *rbtree.RBTree, key int32, metrics *observability.TreeMetrics, report *benchReport) {
	start := time.Now()

	result := resultAbsent
	if set.Delete(key) {
		result = resultRemoved
	}

	metrics.RecordOperation(ctx, observability.OpDelete, result, time.Since(start))

	report.Outcomes[result]++
}

func benchContains(ctx context.Context, set *rbtree.RBTree, key int32, metrics *observability.TreeMetrics, report *benchReport) {
	start := time.Now()

	result := resultMiss
	if set.Contains(key) {
		result = resultHit
	}

	metrics.RecordOperation(ctx, observability.OpContains, result, time.Since(start))

	report.Outcomes[result]++
}

func hibernateRoundTrip(sharded *rbtree.ShardedAllocator, sets []*rbtree.RBTree, report *benchReport, logger *slog.Logger) error {
	sharded.Hibernate()

	report.HibernatedBytes = sharded.HibernatedSize()
	report.Hibernated = true

	sharded.Boot()

	if sharded.Used() != report.Slots {
		return fmt.Errorf("%w: %d before, %d after", ErrArenaDrift, report.Slots, sharded.Used())
	}

	for idx, set := range sets {
		err := set.Validate()
		if err != nil {
			return fmt.Errorf("validate %s%d after boot: %w", benchSetPrefix, idx, err)
		}
	}

	logger.Debug("hibernation round trip", "compressed_bytes", report.HibernatedBytes)

	return nil
}

func totalKeys(sets []*rbtree.RBTree) int {
	total := 0

	for _, set := range sets {
		total += set.Len()
	}

	return total
}

func benchTable(report benchReport) string {
	operations := 0
	for _, count := range report.Outcomes {
		operations += count
	}

	operations += report.Failed

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRows([]table.Row{
		{"operations", humanize.Comma(int64(operations))},
		{"elapsed", report.Elapsed.Round(time.Microsecond).String()},
		{"inserted", humanize.Comma(int64(report.Outcomes[resultAdded]))},
		{"duplicates", humanize.Comma(int64(report.Outcomes[resultDuplicate]))},
		{"removed", humanize.Comma(int64(report.Outcomes[resultRemoved]))},
		{"absent", humanize.Comma(int64(report.Outcomes[resultAbsent]))},
		{"hits", humanize.Comma(int64(report.Outcomes[resultHit]))},
		{"misses", humanize.Comma(int64(report.Outcomes[resultMiss]))},
		{"failed", humanize.Comma(int64(report.Failed))},
		{"sets", report.Sets},
		{"keys", humanize.Comma(int64(report.Keys))},
		{"arena slots", humanize.Comma(int64(report.Slots))},
	})

	if report.Hibernated {
		tbl.AppendRow(table.Row{"hibernated", humanize.Bytes(uint64(report.HibernatedBytes))}) //nolint:gosec // sizes are non-negative.
	}

	return tbl.Render()
}
