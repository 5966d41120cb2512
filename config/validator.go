package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Swind/go-frame-pipeline/core"
)

var poolNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]*$`)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks if the configuration is valid and fills in defaults
func Validate(cfg *Config) error {
	if cfg.Coordinator.HistoryCapacity < 0 {
		return fmt.Errorf("coordinator.history_capacity must be >= 0")
	}
	if cfg.Coordinator.HistoryCapacity == 0 {
		cfg.Coordinator.HistoryCapacity = 120 // default
	}

	if cfg.Coordinator.LogLevel == "" {
		cfg.Coordinator.LogLevel = "info"
	}
	if !logLevels[strings.ToLower(cfg.Coordinator.LogLevel)] {
		return fmt.Errorf("coordinator.log_level %q must be one of debug, info, warn, error", cfg.Coordinator.LogLevel)
	}

	// Set metrics defaults if not provided
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "framepipeline"
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9090"
	}
	if cfg.Metrics.PollIntervalMS < 0 {
		return fmt.Errorf("metrics.poll_interval_ms must be >= 0")
	}
	if cfg.Metrics.PollIntervalMS == 0 {
		cfg.Metrics.PollIntervalMS = 1000
	}

	if err := ValidateWindows(cfg.Windows); err != nil {
		return fmt.Errorf("window validation failed: %w", err)
	}

	return nil
}

// ValidateWindows checks window names are unique and threading models name
// valid pools
func ValidateWindows(windows []WindowConfig) error {
	seen := make(map[string]bool, len(windows))
	for i := range windows {
		w := &windows[i]
		if w.Name == "" {
			return fmt.Errorf("windows[%d]: name is required", i)
		}
		if seen[w.Name] {
			return fmt.Errorf("windows[%d]: duplicate name %q", i, w.Name)
		}
		seen[w.Name] = true

		if err := ValidateThreadingModel(w.ThreadingModel); err != nil {
			return fmt.Errorf("window %q: %w", w.Name, err)
		}

		if w.Regions < 0 {
			return fmt.Errorf("window %q: regions must be >= 0", w.Name)
		}
		if w.Regions == 0 {
			w.Regions = 1 // default
		}
	}
	return nil
}

// ValidateThreadingModel rejects models whose pool names would not survive
// a round trip through core.ParseThreadingModel.
func ValidateThreadingModel(s string) error {
	m := core.ParseThreadingModel(s)
	for _, name := range []string{m.CullName, m.DrawName} {
		if !poolNamePattern.MatchString(name) {
			return fmt.Errorf("threading model %q: invalid pool name %q", s, name)
		}
	}
	return nil
}
