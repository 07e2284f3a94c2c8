package observability_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/rbset/pkg/observability"
	"github.com/Sumatoshi-tech/rbset/pkg/rbtree"
)

func setupTestMeter(t *testing.T) (*observability.TreeMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	tm, err := observability.NewTreeMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return tm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func sumValue(t *testing.T, mt *metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := mt.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", mt.Name)

	var total int64

	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestTreeMetrics_RecordOperation(t *testing.T) {
	t.Parallel()
	tm, reader := setupTestMeter(t)
	ctx := context.Background()

	tm.RecordOperation(ctx, observability.OpInsert, "added", time.Microsecond)
	tm.RecordOperation(ctx, observability.OpInsert, "duplicate", time.Microsecond)
	tm.RecordOperation(ctx, observability.OpDelete, "removed", time.Microsecond)

	rm := collectMetrics(t, reader)

	ops := findMetric(rm, "rbset.operations.total")
	require.NotNil(t, ops, "rbset.operations.total metric not found")
	assert.Equal(t, int64(3), sumValue(t, ops))

	duration := findMetric(rm, "rbset.operation.duration.seconds")
	require.NotNil(t, duration, "rbset.operation.duration.seconds metric not found")
}

func TestTreeMetrics_RecordError(t *testing.T) {
	t.Parallel()
	tm, reader := setupTestMeter(t)

	tm.RecordError(context.Background(), observability.OpInsert)

	errTotal := findMetric(collectMetrics(t, reader), "rbset.errors.total")
	require.NotNil(t, errTotal)
	assert.Equal(t, int64(1), sumValue(t, errTotal))
}

func TestTreeMetrics_RecordStats(t *testing.T) {
	t.Parallel()
	tm, reader := setupTestMeter(t)

	tree := rbtree.New()
	before := tree.Stats()

	for key := range int32(3) {
		_, err := tree.Insert(key)
		require.NoError(t, err)
	}

	tm.RecordStats(context.Background(), before, tree.Stats())

	rm := collectMetrics(t, reader)

	rotations := findMetric(rm, "rbset.rotations.total")
	require.NotNil(t, rotations)
	assert.Equal(t, int64(1), sumValue(t, rotations))

	steps := findMetric(rm, "rbset.fixup.steps.total")
	require.NotNil(t, steps)
	assert.Equal(t, int64(3), sumValue(t, steps))
}

func TestTreeMetrics_ObserveSize(t *testing.T) {
	t.Parallel()
	tm, reader := setupTestMeter(t)

	reg, err := tm.ObserveSize(func() observability.SizeReport {
		return observability.SizeReport{Keys: 5, ArenaSlots: 12}
	})
	require.NoError(t, err)

	rm := collectMetrics(t, reader)

	keys := findMetric(rm, "rbset.keys")
	require.NotNil(t, keys)

	gauge, ok := keys.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(5), gauge.DataPoints[0].Value)

	require.NoError(t, reg.Unregister())
}

func TestPrometheusProvider_WriteText(t *testing.T) {
	t.Parallel()

	pp, err := observability.NewPrometheusProvider()
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, pp.Shutdown(context.Background())) })

	tm, err := observability.NewTreeMetrics(pp.Meter())
	require.NoError(t, err)

	tm.RecordOperation(context.Background(), observability.OpContains, "hit", time.Microsecond)

	var buf bytes.Buffer

	require.NoError(t, pp.WriteText(&buf))
	assert.Contains(t, buf.String(), "rbset_operations")
	assert.Contains(t, buf.String(), "target_info")

	families, err := pp.Gatherer().Gather()
	require.NoError(t, err)

	found := false

	for _, family := range families {
		if strings.Contains(family.GetName(), "rbset_operation") {
			found = true
		}
	}

	assert.True(t, found)
}
