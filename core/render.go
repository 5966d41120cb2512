package core

import (
	"errors"
	"runtime/debug"
	"sync/atomic"
)

const appPoolLabel = "app"

// poolLabel names a pool for logs and metrics.
func poolLabel(name string) string {
	if name == "" {
		return appPoolLabel
	}
	return name
}

// renderEnv is the immutable set of collaborators shared by the coordinator
// and every pool, plus a counter of skipped regions.
type renderEnv struct {
	culler  Culler
	logger  Logger
	metrics Metrics
	panics  PanicHandler

	skipped atomic.Int64
}

func newRenderEnv(config *CoordinatorConfig) *renderEnv {
	return &renderEnv{
		culler:  config.Culler,
		logger:  config.Logger,
		metrics: config.Metrics,
		panics:  config.PanicHandler,
	}
}

// recoverPanic must be deferred directly by the function running callbacks.
func (e *renderEnv) recoverPanic(pool string, phase string) {
	r := recover()
	if r == nil {
		return
	}
	e.reportPanic(pool, phase, r)
}

func (e *renderEnv) reportPanic(pool string, phase string, r any, fields ...Field) {
	label := poolLabel(pool)
	e.panics.HandlePanic(label, phase, r, debug.Stack())
	e.metrics.RecordPanic(label, r)
	fields = append([]Field{F("pool", label), F("phase", phase), F("panic", r)}, fields...)
	e.logger.Error("Recovered panic in frame pipeline", fields...)
}

func (e *renderEnv) regionSkipped(pool string, err error) {
	e.skipped.Add(1)

	reason := "unknown"
	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		reason = renderErr.Reason
	}
	e.metrics.RecordRegionSkipped(poolLabel(pool), reason)
	e.logger.Debug("Skipping display region", F("pool", poolLabel(pool)), F("error", err))
}

// setupScene resolves the camera, lens and scene of a region.
func setupScene(region DisplayRegion) (*SceneSetup, error) {
	cam := region.Camera()
	if cam == nil {
		return nil, &RenderError{Region: region.Name(), Reason: ReasonNoCamera}
	}
	lens := cam.Lens()
	if lens == nil {
		return nil, &RenderError{Region: region.Name(), Reason: ReasonNoLens}
	}
	scene := cam.Scene()
	if scene == nil {
		return nil, &RenderError{Region: region.Name(), Reason: ReasonNoScene}
	}
	return &SceneSetup{Region: region, Camera: cam, Lens: lens, Scene: scene}, nil
}

// usableGSG returns the window's GSG if the window can render this frame.
func usableGSG(win Window) (GSG, bool) {
	if !win.IsActive() {
		return nil, false
	}
	gsg := win.GSG()
	if gsg == nil || !gsg.IsActive() {
		return nil, false
	}
	return gsg, true
}

// cullWindow culls every active region of the window and caches the results
// for its draw pool.
func (e *renderEnv) cullWindow(pool string, h *WindowHandle) {
	gsg, ok := usableGSG(h.window)
	if !ok {
		return
	}

	n := h.window.NumRegions()
	culled := make([]culledRegion, 0, n)
	for i := 0; i < n; i++ {
		region := h.window.Region(i)
		if region == nil || !region.IsActive() {
			continue
		}
		setup, err := setupScene(region)
		if err != nil {
			e.regionSkipped(pool, err)
			continue
		}
		culled = append(culled, culledRegion{setup: setup, result: e.culler.Cull(setup, gsg)})
	}
	h.storeCulled(culled)
}

// drawWindow draws the cached cull results of the window.
func (e *renderEnv) drawWindow(pool string, h *WindowHandle) {
	gsg, ok := usableGSG(h.window)
	if !ok {
		return
	}
	if !h.window.BeginFrame(FrameRender) {
		return
	}
	defer h.window.EndFrame(FrameRender)

	h.window.Clear()
	for _, cr := range h.cachedCulled() {
		if err := drawRegion(gsg, cr.setup, cr.result); err != nil {
			e.regionSkipped(pool, err)
		}
	}
}

// cullAndDrawWindow culls each region straight into the GSG, without
// caching results between passes.
func (e *renderEnv) cullAndDrawWindow(pool string, h *WindowHandle) {
	gsg, ok := usableGSG(h.window)
	if !ok {
		return
	}
	if !h.window.BeginFrame(FrameRender) {
		return
	}
	defer h.window.EndFrame(FrameRender)

	h.window.Clear()
	n := h.window.NumRegions()
	for i := 0; i < n; i++ {
		region := h.window.Region(i)
		if region == nil || !region.IsActive() {
			continue
		}
		if err := e.cullAndDrawRegion(gsg, region); err != nil {
			e.regionSkipped(pool, err)
		}
	}
}

func (e *renderEnv) cullAndDrawRegion(gsg GSG, region DisplayRegion) error {
	setup, err := setupScene(region)
	if err != nil {
		return err
	}

	gsg.PushRegion(region)
	defer gsg.PopRegion()

	gsg.PrepareDisplayRegion(region)
	gsg.ClearRegion(region)
	if !gsg.SetLens(setup.Lens) {
		return &RenderError{Region: region.Name(), Reason: ReasonLensRejected}
	}
	if !gsg.BeginScene() {
		return &RenderError{Region: region.Name(), Reason: ReasonSceneRejected}
	}
	if result := e.culler.Cull(setup, gsg); result != nil {
		result.Draw(gsg)
	}
	gsg.EndScene()
	return nil
}

func drawRegion(gsg GSG, setup *SceneSetup, result CullResult) error {
	region := setup.Region
	gsg.PushRegion(region)
	defer gsg.PopRegion()

	gsg.PrepareDisplayRegion(region)
	gsg.ClearRegion(region)
	if !gsg.SetLens(setup.Lens) {
		return &RenderError{Region: region.Name(), Reason: ReasonLensRejected}
	}
	if !gsg.BeginScene() {
		return &RenderError{Region: region.Name(), Reason: ReasonSceneRejected}
	}
	if result != nil {
		result.Draw(gsg)
	}
	gsg.EndScene()
	return nil
}

// renderSubframe culls and draws one region on the calling goroutine.
func (e *renderEnv) renderSubframe(gsg GSG, region DisplayRegion, cullSorting bool) error {
	if !cullSorting {
		return e.cullAndDrawRegion(gsg, region)
	}
	setup, err := setupScene(region)
	if err != nil {
		return err
	}
	return drawRegion(gsg, setup, e.culler.Cull(setup, gsg))
}
