package core

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlogLogger(slog.New(handler))

	logger.Warn("Worker started", F("pool", "draw"), F("windows", 2))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if record["msg"] != "Worker started" || record["level"] != "WARN" {
		t.Errorf("record = %v", record)
	}
	if record["pool"] != "draw" || record["windows"] != float64(2) {
		t.Errorf("fields not written: %v", record)
	}
}

func TestLoggers_DoNotPanic(t *testing.T) {
	for _, logger := range []Logger{NewDefaultLogger(io.Discard, slog.LevelDebug), NewNoOpLogger(), NewSlogLogger(nil)} {
		logger.Debug("debug")
		logger.Info("info", F("k", "v"))
		logger.Warn("warn")
		logger.Error("error", F("err", ErrUnknownWindow))
	}
}

// TestDefaultLogger_FiltersByLevel verifies the minimum level and line format
// Given: A DefaultLogger at warn level writing to a buffer
// When: Messages are logged at every level
// Then: Only warn and error lines are written, with their fields
func TestDefaultLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(&buf, slog.LevelWarn)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("Skipping display region", F("pool", "app"), F("reason", ReasonNoLens))
	logger.Error("Recovered panic")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q, want 2", lines)
	}
	if !strings.Contains(lines[0], "[WARN] Skipping display region {pool: app, reason: no_lens}") {
		t.Errorf("warn line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[0], "framepipeline ") {
		t.Errorf("missing prefix: %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] Recovered panic") {
		t.Errorf("error line = %q", lines[1])
	}
}
