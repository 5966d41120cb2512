package core

import (
	"sync"

	"github.com/google/uuid"
)

// FrameMode tells a window what kind of frame is beginning.
type FrameMode int

const (
	// FrameRender is a normal frame that draws the window's display regions.
	FrameRender FrameMode = iota

	// FrameRefresh redraws the previous contents without rendering new geometry.
	FrameRefresh
)

// Properties carries a requested change of window properties.
// Requests are recorded by RequestProperties and applied by SetPropertiesNow.
type Properties struct {
	Title  string
	Width  int
	Height int

	// Close asks the window system to close the window.
	Close bool
}

// Lens is an opaque projection handed to the GSG.
type Lens interface{}

// Scene is an opaque scene graph root handed to the Culler.
type Scene interface{}

// Camera binds a lens to the scene it looks at.
// Either accessor may return nil; such regions are skipped.
type Camera interface {
	Lens() Lens
	Scene() Scene
}

// DisplayRegion is a rectangular area of a window rendered through one camera.
type DisplayRegion interface {
	Name() string
	IsActive() bool
	Camera() Camera
}

// GSG is the graphics state guardian: the graphics context a window draws with.
// It is only used inside the cull/draw routines, never by the scheduler itself.
type GSG interface {
	IsActive() bool
	SetLens(lens Lens) bool
	PushRegion(region DisplayRegion)
	PopRegion()
	PrepareDisplayRegion(region DisplayRegion)
	ClearRegion(region DisplayRegion)
	BeginScene() bool
	EndScene()
}

// SceneSetup is everything the Culler needs to cull one display region.
type SceneSetup struct {
	Region DisplayRegion
	Camera Camera
	Lens   Lens
	Scene  Scene
}

// CullResult is the opaque product of culling, consumed by the draw step.
type CullResult interface {
	Draw(gsg GSG)
}

// Culler determines and sorts potentially visible geometry.
type Culler interface {
	Cull(setup *SceneSetup, gsg GSG) CullResult
}

// Window is a renderable target. Implementations must be safe for use from
// the goroutine of the pool that owns each responsibility: cull and draw calls
// arrive on the cull and draw pools, window management on the app goroutine.
type Window interface {
	IsActive() bool
	BeginFrame(mode FrameMode) bool
	Clear()
	EndFrame(mode FrameMode)
	BeginFlip()
	EndFlip()

	NumRegions() int
	Region(i int) DisplayRegion

	// GSG returns nil once ReleaseGSG has been called.
	GSG() GSG
	ReleaseGSG()

	RequestProperties(props Properties)
	SetPropertiesNow()
	IsClosed() bool
	ProcessEvents()
}

// Pipe materializes windows on behalf of the coordinator.
type Pipe interface {
	MakeOutput(name string, props Properties) (Window, error)
}

// emptyCuller is used when no Culler is configured: regions are prepared and
// cleared but nothing is drawn into them.
type emptyCuller struct{}

type emptyCullResult struct{}

func (emptyCuller) Cull(*SceneSetup, GSG) CullResult { return emptyCullResult{} }

func (emptyCullResult) Draw(GSG) {}

// culledRegion is one region's setup together with the result culled for it.
type culledRegion struct {
	setup  *SceneSetup
	result CullResult
}

// WindowHandle is the coordinator's shared reference to a registered window.
// The caller, the coordinator and any worker in flight may all hold it; the
// window is safe to discard once State reports WindowClosed.
type WindowHandle struct {
	id     uuid.UUID
	name   string
	window Window
	model  ThreadingModel

	lifecycle windowLifecycle

	cullMu sync.Mutex
	culled []culledRegion
}

func newWindowHandle(name string, window Window, model ThreadingModel) *WindowHandle {
	return &WindowHandle{
		id:        uuid.New(),
		name:      name,
		window:    window,
		model:     model,
		lifecycle: newWindowLifecycle(model.DrawPool()),
	}
}

// ID returns the unique id assigned at registration.
func (h *WindowHandle) ID() uuid.UUID { return h.id }

// Name returns the name the window was created with.
func (h *WindowHandle) Name() string { return h.name }

// Window returns the underlying window.
func (h *WindowHandle) Window() Window { return h.window }

// ThreadingModel returns the model the window was registered with.
func (h *WindowHandle) ThreadingModel() ThreadingModel { return h.model }

// State returns the window's teardown state.
func (h *WindowHandle) State() WindowState { return h.lifecycle.State() }

// storeCulled replaces the cached cull results. Called from the cull pool.
func (h *WindowHandle) storeCulled(regions []culledRegion) {
	h.cullMu.Lock()
	h.culled = regions
	h.cullMu.Unlock()
}

// cachedCulled returns the most recent cull results. Called from the draw pool,
// which may be a different goroutine than the one that culled.
func (h *WindowHandle) cachedCulled() []culledRegion {
	h.cullMu.Lock()
	defer h.cullMu.Unlock()
	return h.culled
}
