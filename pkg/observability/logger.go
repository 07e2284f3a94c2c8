package observability

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	attrService = "service"
	attrMode    = "mode"
)

// ErrUnknownLogLevel is returned by ParseLevel for unrecognized names.
var ErrUnknownLogLevel = errors.New("unknown log level")

// ErrUnknownLogFormat is returned by NewLogger for unrecognized formats.
var ErrUnknownLogFormat = errors.New("unknown log format")

// NewLogger builds a slog logger with the service and mode attributes pre-attached,
// so they stay at the top level even when groups are used later.
func NewLogger(cfg LogConfig) (*slog.Logger, error) {
	output := cfg.Output
	if output == nil {
		output = io.Discard
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.Level}

	var inner slog.Handler

	switch strings.ToLower(cfg.Format) {
	case "", LogFormatText:
		inner = slog.NewTextHandler(output, handlerOpts)
	case LogFormatJSON:
		inner = slog.NewJSONHandler(output, handlerOpts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLogFormat, cfg.Format)
	}

	service := cfg.Service
	if service == "" {
		service = DefaultServiceName
	}

	attrs := []slog.Attr{slog.String(attrService, service)}

	if cfg.Mode != "" {
		attrs = append(attrs, slog.String(attrMode, string(cfg.Mode)))
	}

	return slog.New(inner.WithAttrs(attrs)), nil
}

// ParseLevel maps a configuration level name onto a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(strings.TrimSpace(name)))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLogLevel, name)
	}

	return level, nil
}
