// Package config loads rbset settings from a YAML file, RBSET_* environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Sentinel validation errors.
var (
	ErrInvalidMaxNodes    = errors.New("tree max_nodes must not be negative")
	ErrInvalidThreshold   = errors.New("tree hibernation_threshold must not be negative")
	ErrInvalidShards      = errors.New("tree shards must be positive")
	ErrInvalidOperations  = errors.New("bench operations must be positive")
	ErrInvalidKeyRange    = errors.New("bench key_range must be within 1..2147483647")
	ErrInvalidSets        = errors.New("bench sets must be positive")
	ErrInvalidInsertRatio = errors.New("bench insert_ratio must be within 0..1")
	ErrKeyOutOfRange      = errors.New("demo key does not fit in int32")
	ErrInvalidLogFormat   = errors.New("logging format must be text or json")
)

var logFormats = []string{"text", "json"}

// Config holds all rbset settings.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Demo    DemoConfig    `mapstructure:"demo"`
	Tree    TreeConfig    `mapstructure:"tree"`
	Bench   BenchConfig   `mapstructure:"bench"`
}

// TreeConfig controls the node arenas.
type TreeConfig struct {
	// MaxNodes caps the arena slots per set (shared evenly between shards in bench). Zero disables the cap.
	MaxNodes int `mapstructure:"max_nodes"`
	// HibernationThreshold is the minimal arena length worth compressing.
	HibernationThreshold int `mapstructure:"hibernation_threshold"`
	// Shards is the number of allocators bench spreads its sets over.
	Shards int `mapstructure:"shards"`
}

// DemoConfig lists the keys the demo command inserts and then removes.
type DemoConfig struct {
	Insert []int `mapstructure:"insert"`
	Remove []int `mapstructure:"remove"`
}

// BenchConfig drives the randomized workload.
type BenchConfig struct {
	Operations  int     `mapstructure:"operations"`
	KeyRange    int     `mapstructure:"key_range"`
	Sets        int     `mapstructure:"sets"`
	Seed        int64   `mapstructure:"seed"`
	InsertRatio float64 `mapstructure:"insert_ratio"`
	Hibernate   bool    `mapstructure:"hibernate"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks value ranges. The log level is checked by the logger itself.
func (cfg *Config) Validate() error {
	if cfg.Tree.MaxNodes < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxNodes, cfg.Tree.MaxNodes)
	}

	if cfg.Tree.HibernationThreshold < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, cfg.Tree.HibernationThreshold)
	}

	if cfg.Tree.Shards <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidShards, cfg.Tree.Shards)
	}

	if cfg.Bench.Operations <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOperations, cfg.Bench.Operations)
	}

	if cfg.Bench.KeyRange <= 0 || cfg.Bench.KeyRange > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrInvalidKeyRange, cfg.Bench.KeyRange)
	}

	if cfg.Bench.Sets <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSets, cfg.Bench.Sets)
	}

	if cfg.Bench.InsertRatio < 0 || cfg.Bench.InsertRatio > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidInsertRatio, cfg.Bench.InsertRatio)
	}

	for _, key := range slices.Concat(cfg.Demo.Insert, cfg.Demo.Remove) {
		if key < math.MinInt32 || key > math.MaxInt32 {
			return fmt.Errorf("%w: %d", ErrKeyOutOfRange, key)
		}
	}

	if !slices.Contains(logFormats, cfg.Logging.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, cfg.Logging.Format)
	}

	return nil
}
