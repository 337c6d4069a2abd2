// Package config handles hullquery configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"runtime"
)

// Support modes accepted by QueryConfig.SupportMode.
const (
	SupportScan      = "scan"
	SupportHillClimb = "hill_climb"
)

var ErrInvalidConfig = errors.New("config: invalid value")

// Config holds all hullquery settings.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Query    QueryConfig    `yaml:"query"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// QueryConfig holds settings of the shape queries.
type QueryConfig struct {
	SupportMode string `yaml:"support_mode"` // scan or hill_climb
	PrintShape  bool   `yaml:"print_shape"`  // Dump the shape after the queries
}

// PipelineConfig holds settings of the batch overlap tests.
type PipelineConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Query: QueryConfig{
			SupportMode: SupportHillClimb,
			PrintShape:  false,
		},
		Pipeline: PipelineConfig{
			Workers: runtime.NumCPU(),
		},
	}
}

// Validate checks the values that cannot be defaulted silently.
func (c *Config) Validate() error {
	switch c.Query.SupportMode {
	case SupportScan, SupportHillClimb:
	default:
		return fmt.Errorf("query.support_mode %q: %w", c.Query.SupportMode, ErrInvalidConfig)
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers %d: %w", c.Pipeline.Workers, ErrInvalidConfig)
	}
	return nil
}
