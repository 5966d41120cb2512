package core

import (
	"testing"
	"time"
)

func TestDefaultPanicHandler(t *testing.T) {
	// Given: A DefaultPanicHandler
	handler := &DefaultPanicHandler{}

	// When: HandlePanic is called
	handler.HandlePanic("draw", "frame", "test panic", []byte("stack trace"))

	// Then: No panic should occur
}

func TestNilMetrics(t *testing.T) {
	var m Metrics = &NilMetrics{}
	m.RecordFrameDuration(time.Millisecond)
	m.RecordCommandDuration("draw", WorkerDoFrame, time.Millisecond)
	m.RecordRegionSkipped("draw", ReasonNoCamera)
	m.RecordPanic("draw", "boom")
}

// TestCoordinatorConfig_WithDefaults verifies nil fields are filled in
// Given: A config with only a logger and SingleThreaded set
// When: withDefaults is applied
// Then: Every other collaborator gets its default and explicit values are kept
func TestCoordinatorConfig_WithDefaults(t *testing.T) {
	logger := &recordingLogger{}
	config := (&CoordinatorConfig{Logger: logger, SingleThreaded: true}).withDefaults()

	if config.Logger != logger {
		t.Error("explicit logger replaced")
	}
	if !config.SingleThreaded {
		t.Error("SingleThreaded lost")
	}
	if config.PanicHandler == nil || config.Metrics == nil || config.Pipeline == nil ||
		config.Clock == nil || config.Culler == nil {
		t.Errorf("defaults missing: %+v", config)
	}
	if config.HistoryCapacity != defaultFrameHistoryCapacity {
		t.Errorf("HistoryCapacity = %d", config.HistoryCapacity)
	}

	var nilConfig *CoordinatorConfig
	if got := nilConfig.withDefaults(); got == nil || got.SingleThreaded {
		t.Errorf("nil config defaults = %+v", got)
	}
}

func TestRenderError(t *testing.T) {
	err := &RenderError{Region: "main", Reason: ReasonNoLens}
	if got := err.Error(); got != `render failure in region "main": no_lens` {
		t.Errorf("Error() = %q", got)
	}
	if got := (&RenderError{Reason: ReasonNoTarget}).Error(); got != "render failure: no_target" {
		t.Errorf("Error() = %q", got)
	}
}
