package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/rbset/pkg/rbtree"
	"github.com/Sumatoshi-tech/rbset/pkg/safeconv"
)

// MeterName is the instrumentation scope used by the rbset binary.
const MeterName = "rbset"

const (
	metricOperationsTotal   = "rbset.operations.total"
	metricOperationDuration = "rbset.operation.duration.seconds"
	metricErrorsTotal       = "rbset.errors.total"
	metricRotationsTotal    = "rbset.rotations.total"
	metricFixupStepsTotal   = "rbset.fixup.steps.total"
	metricKeys              = "rbset.keys"
	metricArenaSlots        = "rbset.arena.slots"

	attrOp     = "op"
	attrResult = "result"
	attrPhase  = "phase"

	// OpInsert labels insert operations.
	OpInsert = "insert"
	// OpDelete labels delete operations.
	OpDelete = "delete"
	// OpContains labels membership queries.
	OpContains = "contains"
)

// durationBucketBoundaries covers single tree operations, from tens of nanoseconds
// up to a millisecond for cold caches.
var durationBucketBoundaries = []float64{1e-8, 5e-8, 1e-7, 2.5e-7, 5e-7, 1e-6, 5e-6, 1e-5, 1e-4, 1e-3}

// SizeReport is what the size gauges observe on each collection.
type SizeReport struct {
	Keys       int
	ArenaSlots int
}

// TreeMetrics holds the OTel instruments describing set workloads.
type TreeMetrics struct {
	meter             metric.Meter
	operationsTotal   metric.Int64Counter
	operationDuration metric.Float64Histogram
	errorsTotal       metric.Int64Counter
	rotationsTotal    metric.Int64Counter
	fixupStepsTotal   metric.Int64Counter
	keys              metric.Int64ObservableGauge
	arenaSlots        metric.Int64ObservableGauge
}

// NewTreeMetrics creates the set instruments from the given meter.
func NewTreeMetrics(mt metric.Meter) (*TreeMetrics, error) {
	bld := newMetricBuilder(mt)

	tm := &TreeMetrics{
		meter:             mt,
		operationsTotal:   bld.counter(metricOperationsTotal, "Total number of set operations", "{operation}"),
		operationDuration: bld.histogram(metricOperationDuration, "Set operation duration in seconds", "s", durationBucketBoundaries...),
		errorsTotal:       bld.counter(metricErrorsTotal, "Total number of failed set operations", "{error}"),
		rotationsTotal:    bld.counter(metricRotationsTotal, "Total number of tree rotations", "{rotation}"),
		fixupStepsTotal:   bld.counter(metricFixupStepsTotal, "Total number of rebalancing iterations", "{step}"),
		keys:              bld.gauge(metricKeys, "Number of keys stored", "{key}"),
		arenaSlots:        bld.gauge(metricArenaSlots, "Number of arena slots in use", "{slot}"),
	}

	if bld.err != nil {
		return nil, bld.err
	}

	return tm, nil
}

// RecordOperation records one set operation. Result is a short outcome label such as
// "added", "duplicate", "removed", "absent", "hit" or "miss".
func (tm *TreeMetrics) RecordOperation(ctx context.Context, op, result string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrResult, result),
	)

	tm.operationsTotal.Add(ctx, 1, attrs)
	tm.operationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordError records a failed set operation.
func (tm *TreeMetrics) RecordError(ctx context.Context, op string) {
	tm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
}

// RecordStats adds the structural work done between two Stats readings of the same tree.
func (tm *TreeMetrics) RecordStats(ctx context.Context, before, after rbtree.Stats) {
	tm.rotationsTotal.Add(ctx, safeconv.MustUint64ToInt64(after.Rotations-before.Rotations))
	tm.fixupStepsTotal.Add(ctx, safeconv.MustUint64ToInt64(after.InsertFixupSteps-before.InsertFixupSteps),
		metric.WithAttributes(attribute.String(attrPhase, OpInsert)))
	tm.fixupStepsTotal.Add(ctx, safeconv.MustUint64ToInt64(after.RemoveFixupSteps-before.RemoveFixupSteps),
		metric.WithAttributes(attribute.String(attrPhase, OpDelete)))
}

// ObserveSize registers a callback feeding the key and arena gauges.
// Unregister the returned registration once the observed sets are gone.
func (tm *TreeMetrics) ObserveSize(report func() SizeReport) (metric.Registration, error) {
	reg, err := tm.meter.RegisterCallback(func(_ context.Context, obs metric.Observer) error {
		size := report()
		obs.ObserveInt64(tm.keys, int64(size.Keys))
		obs.ObserveInt64(tm.arenaSlots, int64(size.ArenaSlots))

		return nil
	}, tm.keys, tm.arenaSlots)
	if err != nil {
		return nil, fmt.Errorf("register size callback: %w", err)
	}

	return reg, nil
}
