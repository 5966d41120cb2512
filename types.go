package framepipeline

import "github.com/Swind/go-frame-pipeline/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the framepipeline package for most use cases.

// FrameCoordinator drives the per-frame cull/draw/flip protocol
type FrameCoordinator = core.FrameCoordinator

// CoordinatorConfig holds the coordinator's collaborators and options
type CoordinatorConfig = core.CoordinatorConfig

// WindowHandle is the shared reference to a registered window
type WindowHandle = core.WindowHandle

// ThreadingModel names the pools that cull and draw a window
type ThreadingModel = core.ThreadingModel

// WindowState is a step of window teardown
type WindowState = core.WindowState

// Collaborator interfaces implemented by the windowing and rendering layers
type (
	Window        = core.Window
	Pipe          = core.Pipe
	GSG           = core.GSG
	DisplayRegion = core.DisplayRegion
	Camera        = core.Camera
	Culler        = core.Culler
	CullResult    = core.CullResult
	SceneSetup    = core.SceneSetup
	Properties    = core.Properties
	Lens          = core.Lens
	Scene         = core.Scene
)

// Observability types
type (
	Logger           = core.Logger
	Metrics          = core.Metrics
	PanicHandler     = core.PanicHandler
	FrameRecord      = core.FrameRecord
	CoordinatorStats = core.CoordinatorStats
	WorkerStats      = core.WorkerStats
	PoolStats        = core.PoolStats
)

// RenderError describes a skipped display region
type RenderError = core.RenderError

// Window teardown states
const (
	WindowLive           WindowState = core.WindowLive
	WindowPendingRelease WindowState = core.WindowPendingRelease
	WindowReleased       WindowState = core.WindowReleased
	WindowPendingClose   WindowState = core.WindowPendingClose
	WindowClosed         WindowState = core.WindowClosed
)

// Sentinel errors
var (
	ErrWindowCreation       = core.ErrWindowCreation
	ErrUnknownWindow        = core.ErrUnknownWindow
	ErrRenderFailure        = core.ErrRenderFailure
	ErrThreadingUnsupported = core.ErrThreadingUnsupported
)

// Convenience functions
var (
	DefaultCoordinatorConfig = core.DefaultCoordinatorConfig
	ParseThreadingModel      = core.ParseThreadingModel
	F                        = core.F
)

// NewFrameCoordinator creates a coordinator. A nil config uses DefaultCoordinatorConfig.
func NewFrameCoordinator(config *CoordinatorConfig) *FrameCoordinator {
	return core.NewFrameCoordinator(config)
}

// CycleData is a double-buffered value published by a Pipeline
type CycleData[T any] = core.CycleData[T]

// NewCycleData creates a CycleData whose both generations hold initial.
func NewCycleData[T any](initial T) *CycleData[T] {
	return core.NewCycleData(initial)
}
