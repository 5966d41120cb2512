package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Swind/go-frame-pipeline/core"
	"gopkg.in/yaml.v3"
)

// Config represents a complete frame pipeline configuration
type Config struct {
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Windows     []WindowConfig    `yaml:"windows"`
}

// CoordinatorConfig contains FrameCoordinator options
type CoordinatorConfig struct {
	SingleThreaded  bool   `yaml:"single_threaded"`  // render every window on the app pool
	HistoryCapacity int    `yaml:"history_capacity"` // frame records kept (default: 120)
	LogLevel        string `yaml:"log_level"`        // debug, info, warn, error
}

// MetricsConfig contains Prometheus exporter settings
type MetricsConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Namespace      string `yaml:"namespace"`
	ListenAddr     string `yaml:"listen_addr"`
	PollIntervalMS int    `yaml:"poll_interval_ms"`
}

// WindowConfig describes one window to open at startup
type WindowConfig struct {
	Name           string `yaml:"name"`
	ThreadingModel string `yaml:"threading_model"` // e.g. "cull/draw", "-draw", ""
	Regions        int    `yaml:"regions"`         // display regions (default: 1)
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates YAML configuration data
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// PollInterval returns the snapshot poll interval.
func (m MetricsConfig) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalMS) * time.Millisecond
}

// Level returns the slog level named by LogLevel.
func (c CoordinatorConfig) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// CoordinatorConfig builds the in-process coordinator config. Collaborators
// not covered by the file (panic handler, pipeline, clock, culler) keep their
// defaults and may be set on the result.
func (c *Config) CoordinatorConfig(logger core.Logger, metrics core.Metrics) *core.CoordinatorConfig {
	out := core.DefaultCoordinatorConfig()
	if logger != nil {
		out.Logger = logger
	}
	if metrics != nil {
		out.Metrics = metrics
	}
	out.SingleThreaded = c.Coordinator.SingleThreaded
	out.HistoryCapacity = c.Coordinator.HistoryCapacity
	return out
}
