package core

import (
	"errors"
	"fmt"
)

var (
	// ErrWindowCreation is reported when a Pipe fails to produce a window.
	ErrWindowCreation = errors.New("window creation failed")

	// ErrUnknownWindow is reported when a window is not registered with the coordinator.
	ErrUnknownWindow = errors.New("unknown window")

	// ErrRenderFailure marks a display region that was skipped for the current frame.
	ErrRenderFailure = errors.New("render failure")

	// ErrThreadingUnsupported is reported when a named threading model is
	// requested but the coordinator was configured without worker threads.
	ErrThreadingUnsupported = errors.New("threading not supported")

	// ErrIllegalTransition is returned by the window teardown state machine.
	ErrIllegalTransition = errors.New("illegal window state transition")

	// ErrNotOwner is returned when a pool other than the owning draw pool
	// tries to release a window's graphics context.
	ErrNotOwner = errors.New("pool does not own window")
)

// Reasons attached to a RenderError.
const (
	ReasonNoCamera      = "no_camera"
	ReasonNoLens        = "no_lens"
	ReasonNoScene       = "no_scene"
	ReasonLensRejected  = "lens_rejected"
	ReasonSceneRejected = "scene_rejected"
	ReasonNoTarget      = "no_target"
)

// RenderError describes why a display region was skipped.
type RenderError struct {
	Region string
	Reason string
}

func (e *RenderError) Error() string {
	if e.Region == "" {
		return fmt.Sprintf("render failure: %s", e.Reason)
	}
	return fmt.Sprintf("render failure in region %q: %s", e.Region, e.Reason)
}

// Unwrap allows errors.Is(err, ErrRenderFailure).
func (e *RenderError) Unwrap() error {
	return ErrRenderFailure
}
