// Package observability provides structured logging and OpenTelemetry metrics
// for the rbset command line tool.
package observability

import (
	"io"
	"log/slog"
)

// AppMode identifies the command being executed.
type AppMode string

const (
	// ModeDemo is the scripted insert/remove walkthrough.
	ModeDemo AppMode = "demo"
	// ModeBench is the randomized workload runner.
	ModeBench AppMode = "bench"
	// ModeRender is the tree export command.
	ModeRender AppMode = "render"
)

const (
	// DefaultServiceName is the service attribute attached to every log record.
	DefaultServiceName = "rbset"

	// LogFormatText selects the logfmt-like text handler.
	LogFormatText = "text"
	// LogFormatJSON selects the JSON handler.
	LogFormatJSON = "json"
)

// LogConfig holds logger construction parameters.
type LogConfig struct {
	// Output receives the records. Nil means io.Discard.
	Output io.Writer

	// Service is the service attribute value.
	Service string

	// Mode is the mode attribute value.
	Mode AppMode

	// Format is LogFormatText or LogFormatJSON.
	Format string

	// Level controls the minimum slog severity.
	Level slog.Level
}

// DefaultLogConfig returns a text logger configuration at info level.
func DefaultLogConfig(output io.Writer, mode AppMode) LogConfig {
	return LogConfig{
		Output:  output,
		Service: DefaultServiceName,
		Mode:    mode,
		Format:  LogFormatText,
		Level:   slog.LevelInfo,
	}
}
