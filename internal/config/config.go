// Package config provides configuration types and defaults for the
// canvas layout runtime, grounded on atari's internal/config package.
package config

import "time"

// RuntimeConfig holds all configuration for a canvaslayout runtime
// instance: scheduler/worker tunables, reflow/collapse behavior
// defaults, and log rotation settings (spec §4.11).
type RuntimeConfig struct {
	Worker      WorkerConfig      `yaml:"worker" mapstructure:"worker"`
	AutoLayout  AutoLayoutConfig  `yaml:"auto_layout" mapstructure:"auto_layout"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
	LogLevel    string            `yaml:"log_level" mapstructure:"log_level"`
}

// WorkerConfig controls whether layout execution offloads to the
// worker bridge and how long the bridge waits before falling back to
// in-process execution (spec §4.5, resolved Open Question in §9).
type WorkerConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	DefaultPriority string        `yaml:"default_priority" mapstructure:"default_priority"`
}

// AutoLayoutConfig persists the per-canvas collapse/reflow behavior
// settings described in spec.md §6.
type AutoLayoutConfig struct {
	CollapseBehavior string `yaml:"collapse_behavior" mapstructure:"collapse_behavior"`
	ReflowBehavior   string `yaml:"reflow_behavior" mapstructure:"reflow_behavior"`
}

// LogRotationConfig mirrors atari's LogRotationConfig, feeding a
// lumberjack.Logger in internal/config/logger.go.
type LogRotationConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	Path       string `yaml:"path" mapstructure:"path"`
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// Default returns a RuntimeConfig with sensible defaults.
func Default() *RuntimeConfig {
	return &RuntimeConfig{
		Worker: WorkerConfig{
			Enabled:         false,
			Timeout:         5 * time.Second,
			DefaultPriority: "normal",
		},
		AutoLayout: AutoLayoutConfig{
			CollapseBehavior: "static",
			ReflowBehavior:   "static",
		},
		LogRotation: LogRotationConfig{
			Enabled:    false,
			Path:       ".canvasd/canvasd.log",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		LogLevel: "info",
	}
}
