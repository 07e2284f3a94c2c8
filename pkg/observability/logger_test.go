package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/rbset/pkg/observability"
)

func TestNewLogger_JSONAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger, err := observability.NewLogger(observability.LogConfig{
		Output: &buf,
		Format: observability.LogFormatJSON,
		Mode:   observability.ModeBench,
		Level:  slog.LevelDebug,
	})
	require.NoError(t, err)

	logger.DebugContext(context.Background(), "batch done", slog.Int("ops", 10))

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "rbset", record["service"])
	assert.Equal(t, "bench", record["mode"])
	assert.Equal(t, "batch done", record["msg"])
	assert.InDelta(t, 10, record["ops"], 0)
}

func TestNewLogger_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger, err := observability.NewLogger(observability.LogConfig{
		Output:  &buf,
		Service: "svc",
		Format:  observability.LogFormatJSON,
	})
	require.NoError(t, err)

	logger.WithGroup("tree").Info("validated", slog.Int("height", 4))

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	// Service attrs should be at top level.
	assert.Equal(t, "svc", record["service"])

	tree, ok := record["tree"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 4, tree["height"], 0)
}

func TestNewLogger_TextLevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger, err := observability.NewLogger(observability.DefaultLogConfig(&buf, observability.ModeDemo))
	require.NoError(t, err)

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Info("shown")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "mode=demo")
	assert.Contains(t, buf.String(), "service=rbset")
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := observability.NewLogger(observability.LogConfig{Format: "xml"})
	require.ErrorIs(t, err, observability.ErrUnknownLogFormat)
}

func TestNewLogger_NilOutput(t *testing.T) {
	t.Parallel()

	logger, err := observability.NewLogger(observability.LogConfig{})
	require.NoError(t, err)
	assert.NotPanics(t, func() { logger.Info("dropped") })
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := observability.ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := observability.ParseLevel("loud")
	require.ErrorIs(t, err, observability.ErrUnknownLogLevel)
}
