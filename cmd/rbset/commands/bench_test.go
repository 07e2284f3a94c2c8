package commands

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/rbset/internal/config"
	"github.com/Sumatoshi-tech/rbset/pkg/observability"
)

const (
	testBenchOperations = 2000
	testBenchConfig     = `tree:
  shards: 2
bench:
  operations: 2000
  key_range: 100
  sets: 4
  seed: 7
`
)

func testBenchSettings(t *testing.T, content string) *config.Config {
	t.Helper()

	cfg, err := config.LoadConfig(writeTestConfig(t, content))
	require.NoError(t, err)

	return cfg
}

func testTreeMetrics(t *testing.T) *observability.TreeMetrics {
	t.Helper()

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	metrics, err := observability.NewTreeMetrics(provider.Meter(observability.MeterName))
	require.NoError(t, err)

	return metrics
}

func runTestWorkload(t *testing.T, cfg *config.Config) (benchReport, error) {
	t.Helper()

	workload, err := newBenchWorkload(cfg)
	require.NoError(t, err)

	return workload.run(context.Background(), cfg, testTreeMetrics(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func outcomeTotal(report benchReport) int {
	total := report.Failed
	for _, count := range report.Outcomes {
		total += count
	}

	return total
}

func TestBenchWorkload_CountsEveryOperation(t *testing.T) {
	t.Parallel()

	cfg := testBenchSettings(t, testBenchConfig)
	report, err := runTestWorkload(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, testBenchOperations, outcomeTotal(report))
	assert.Zero(t, report.Failed)
	assert.Equal(t, 4, report.Sets)
	assert.Positive(t, report.Keys)
	assert.LessOrEqual(t, report.Keys, 4*100)
	assert.Equal(t, report.Outcomes[resultAdded]-report.Outcomes[resultRemoved], report.Keys)
	assert.True(t, report.Hibernated)
	assert.Positive(t, report.HibernatedBytes)
}

func TestBenchWorkload_Deterministic(t *testing.T) {
	t.Parallel()

	cfg := testBenchSettings(t, testBenchConfig)
	first, err := runTestWorkload(t, cfg)
	require.NoError(t, err)

	second, err := runTestWorkload(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Outcomes, second.Outcomes)
	assert.Equal(t, first.Keys, second.Keys)
	assert.Equal(t, first.Slots, second.Slots)
}

func TestBenchWorkload_ArenaCapCountsFailures(t *testing.T) {
	t.Parallel()

	cfg := testBenchSettings(t, testBenchConfig+"  hibernate: false\n")
	cfg.Tree.MaxNodes = 40

	report, err := runTestWorkload(t, cfg)
	require.NoError(t, err)

	assert.Positive(t, report.Failed)
	assert.Equal(t, testBenchOperations, outcomeTotal(report))
	assert.False(t, report.Hibernated)
	assert.LessOrEqual(t, report.Slots, 40+2) // Each shard keeps its reserved slot outside the cap.
}

func TestBenchCommand_PrintsReportAndMetrics(t *testing.T) {
	t.Parallel()

	cfgPath := writeTestConfig(t, testBenchConfig)

	stdout, stderr, err := executeRoot(t, "bench", "--metrics", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, stdout, "2,000")
	assert.Contains(t, stdout, "arena slots")
	assert.Contains(t, stdout, "hibernated")
	assert.Contains(t, stdout, "rbset_operations")
	assert.Contains(t, stdout, "rbset_rotations")
	assert.Contains(t, stderr, "bench complete")
}

func TestBenchCommand_WithoutMetrics(t *testing.T) {
	t.Parallel()

	cfgPath := writeTestConfig(t, testBenchConfig)

	stdout, _, err := executeRoot(t, "bench", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "operations")
	assert.NotContains(t, stdout, "rbset_operations")
}
