package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling panics raised by collaborators
// =============================================================================

// PanicHandler is called when a window, GSG or culler callback panics while a
// pool is doing frame work. The panic never propagates past the pool; the
// worker returns to Wait and the frame continues.
//
// Implementations should be thread-safe as they may be called concurrently
// from several workers.
type PanicHandler interface {
	// HandlePanic is called when a callback panics.
	//
	// Parameters:
	// - poolName: The pool whose work panicked ("app" for the app pool)
	// - phase: The command being executed (frame, flip, release, terminate)
	// - panicInfo: The panic value recovered
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(poolName string, phase string, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(poolName string, phase string, panicInfo any, stackTrace []byte) {
	fmt.Printf("[Pool %s] Panic during %s: %v\nStack trace:\n%s",
		poolName, phase, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting frame pipeline metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods are called from the coordinator and from worker goroutines and
// should be non-blocking and fast.
type Metrics interface {
	// RecordFrameDuration records how long RenderFrame held the coordinator.
	RecordFrameDuration(duration time.Duration)

	// RecordCommandDuration records how long a pool took to execute one command.
	RecordCommandDuration(poolName string, state WorkerState, duration time.Duration)

	// RecordRegionSkipped records a display region skipped because of a RenderError.
	RecordRegionSkipped(poolName string, reason string)

	// RecordPanic records a recovered panic.
	RecordPanic(poolName string, panicInfo any)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordFrameDuration(duration time.Duration) {}

func (m *NilMetrics) RecordCommandDuration(poolName string, state WorkerState, duration time.Duration) {
}

func (m *NilMetrics) RecordRegionSkipped(poolName string, reason string) {}

func (m *NilMetrics) RecordPanic(poolName string, panicInfo any) {}

// =============================================================================
// CoordinatorConfig: Configuration for FrameCoordinator
// =============================================================================

const defaultFrameHistoryCapacity = 120

// CoordinatorConfig holds configuration options for FrameCoordinator.
// All collaborators are optional; defaults are used for nil fields.
type CoordinatorConfig struct {
	// Logger defaults to NoOpLogger.
	Logger Logger

	// PanicHandler defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics defaults to NilMetrics.
	Metrics Metrics

	// Pipeline is cycled once per frame. Defaults to a new Pipeline.
	Pipeline PipelineStore

	// Clock is ticked once per frame right after the pipeline cycle.
	// Defaults to a new FrameClock.
	Clock Clock

	// Culler produces the cull results drawn into each display region.
	// Defaults to a culler that produces empty results.
	Culler Culler

	// SingleThreaded disables named worker pools, as on a platform without
	// thread support. Every named threading model is then logged as
	// unsupported and degraded to the app pool.
	SingleThreaded bool

	// HistoryCapacity is the number of FrameRecords kept for RecentFrames.
	HistoryCapacity int
}

// DefaultCoordinatorConfig returns a config with default collaborators.
func DefaultCoordinatorConfig() *CoordinatorConfig {
	return &CoordinatorConfig{
		Logger:          NewNoOpLogger(),
		PanicHandler:    &DefaultPanicHandler{},
		Metrics:         &NilMetrics{},
		Pipeline:        NewPipeline(),
		Clock:           NewFrameClock(),
		Culler:          emptyCuller{},
		HistoryCapacity: defaultFrameHistoryCapacity,
	}
}

// withDefaults returns a copy of c with every nil field filled in.
func (c *CoordinatorConfig) withDefaults() *CoordinatorConfig {
	out := DefaultCoordinatorConfig()
	if c == nil {
		return out
	}
	if c.Logger != nil {
		out.Logger = c.Logger
	}
	if c.PanicHandler != nil {
		out.PanicHandler = c.PanicHandler
	}
	if c.Metrics != nil {
		out.Metrics = c.Metrics
	}
	if c.Pipeline != nil {
		out.Pipeline = c.Pipeline
	}
	if c.Clock != nil {
		out.Clock = c.Clock
	}
	if c.Culler != nil {
		out.Culler = c.Culler
	}
	if c.HistoryCapacity > 0 {
		out.HistoryCapacity = c.HistoryCapacity
	}
	out.SingleThreaded = c.SingleThreaded
	return out
}
