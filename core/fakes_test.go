package core

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// getGoroutineID parses "goroutine 123 [running]:" from the current stack.
func getGoroutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	var id uint64
	for i := len("goroutine "); i < len(b); i++ {
		if b[i] >= '0' && b[i] <= '9' {
			id = id*10 + uint64(b[i]-'0')
		} else {
			break
		}
	}
	return id
}

// =============================================================================
// Regions, cameras, GSG
// =============================================================================

type fakeCamera struct {
	lens  Lens
	scene Scene
}

func (c *fakeCamera) Lens() Lens   { return c.lens }
func (c *fakeCamera) Scene() Scene { return c.scene }

type fakeRegion struct {
	name     string
	inactive bool
	camera   Camera
}

func (r *fakeRegion) Name() string   { return r.name }
func (r *fakeRegion) IsActive() bool { return !r.inactive }
func (r *fakeRegion) Camera() Camera { return r.camera }

func newGoodRegion(name string) *fakeRegion {
	return &fakeRegion{name: name, camera: &fakeCamera{lens: "lens", scene: "scene"}}
}

type fakeGSG struct {
	rejectLens Lens

	depth    atomic.Int32
	scenes   atomic.Int32
	draws    atomic.Int32
	prepared atomic.Int32
	inactive atomic.Bool
	maxDepth atomic.Int32
}

func (g *fakeGSG) IsActive() bool { return !g.inactive.Load() }

func (g *fakeGSG) SetLens(lens Lens) bool {
	return g.rejectLens == nil || lens != g.rejectLens
}

func (g *fakeGSG) PushRegion(DisplayRegion) {
	d := g.depth.Add(1)
	if d > g.maxDepth.Load() {
		g.maxDepth.Store(d)
	}
}

func (g *fakeGSG) PopRegion()                          { g.depth.Add(-1) }
func (g *fakeGSG) PrepareDisplayRegion(DisplayRegion) { g.prepared.Add(1) }
func (g *fakeGSG) ClearRegion(DisplayRegion)          {}
func (g *fakeGSG) BeginScene() bool                   { g.scenes.Add(1); return true }
func (g *fakeGSG) EndScene()                          {}

// =============================================================================
// Window
// =============================================================================

type fakeWindow struct {
	mu      sync.Mutex
	name    string
	regions []DisplayRegion
	gsg     *fakeGSG

	closeRequested bool
	closed         bool
	holdOpen       bool

	frameDelay   time.Duration
	panicOnFrame bool

	drawing  atomic.Bool
	flipping atomic.Bool
	frames   atomic.Int32
	flips    atomic.Int32
	events   atomic.Int32
	releases atomic.Int32

	drawGoroutine    atomic.Uint64
	flipGoroutine    atomic.Uint64
	releaseGoroutine atomic.Uint64
}

func newFakeWindow(name string, regions ...DisplayRegion) *fakeWindow {
	if len(regions) == 0 {
		regions = []DisplayRegion{newGoodRegion(name + "-region")}
	}
	return &fakeWindow{name: name, regions: regions, gsg: &fakeGSG{}}
}

func (w *fakeWindow) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.closed
}

func (w *fakeWindow) BeginFrame(FrameMode) bool {
	if w.panicOnFrame {
		panic("begin frame failed: " + w.name)
	}
	w.drawing.Store(true)
	w.drawGoroutine.Store(getGoroutineID())
	if w.frameDelay > 0 {
		time.Sleep(w.frameDelay)
	}
	return true
}

func (w *fakeWindow) Clear() {}

func (w *fakeWindow) EndFrame(FrameMode) {
	w.frames.Add(1)
	w.drawing.Store(false)
}

func (w *fakeWindow) BeginFlip() {
	w.flipping.Store(true)
	w.flipGoroutine.Store(getGoroutineID())
}

func (w *fakeWindow) EndFlip() {
	w.flips.Add(1)
	w.flipping.Store(false)
}

func (w *fakeWindow) NumRegions() int            { return len(w.regions) }
func (w *fakeWindow) Region(i int) DisplayRegion { return w.regions[i] }

func (w *fakeWindow) GSG() GSG {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gsg == nil {
		return nil
	}
	return w.gsg
}

func (w *fakeWindow) ReleaseGSG() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gsg == nil {
		return
	}
	w.gsg = nil
	w.releases.Add(1)
	w.releaseGoroutine.Store(getGoroutineID())
}

func (w *fakeWindow) RequestProperties(props Properties) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if props.Close {
		w.closeRequested = true
	}
}

// SetPropertiesNow only closes the window once its GSG is gone.
func (w *fakeWindow) SetPropertiesNow() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closeRequested && w.gsg == nil && !w.holdOpen {
		w.closed = true
	}
}

func (w *fakeWindow) IsClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *fakeWindow) ProcessEvents() { w.events.Add(1) }

func (w *fakeWindow) busy() bool {
	return w.drawing.Load() || w.flipping.Load()
}

// =============================================================================
// Pipe, culler, pipeline
// =============================================================================

type fakePipe struct {
	mu      sync.Mutex
	fail    bool
	windows map[string]*fakeWindow
	next    func(name string) *fakeWindow
}

func newFakePipe() *fakePipe {
	return &fakePipe{windows: make(map[string]*fakeWindow)}
}

func (p *fakePipe) MakeOutput(name string, props Properties) (Window, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return nil, errors.New("no display")
	}
	var w *fakeWindow
	if p.next != nil {
		w = p.next(name)
	} else {
		w = newFakeWindow(name)
	}
	p.windows[name] = w
	return w, nil
}

func (p *fakePipe) window(name string) *fakeWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.windows[name]
}

func (p *fakePipe) all() []*fakeWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*fakeWindow, 0, len(p.windows))
	for _, w := range p.windows {
		out = append(out, w)
	}
	return out
}

type fakeCullResult struct{}

func (fakeCullResult) Draw(gsg GSG) {
	if g, ok := gsg.(*fakeGSG); ok {
		g.draws.Add(1)
	}
}

type panickingCullResult struct{}

func (panickingCullResult) Draw(GSG) { panic("draw failed") }

type fakeCuller struct {
	culls atomic.Int32

	nilResults  bool
	panicOnDraw bool
}

func (c *fakeCuller) Cull(*SceneSetup, GSG) CullResult {
	c.culls.Add(1)
	switch {
	case c.nilResults:
		return nil
	case c.panicOnDraw:
		return panickingCullResult{}
	}
	return fakeCullResult{}
}

// checkingPipeline runs check on every cycle.
type checkingPipeline struct {
	cycles atomic.Int32
	check  func()
}

func (p *checkingPipeline) Cycle() {
	p.cycles.Add(1)
	if p.check != nil {
		p.check()
	}
}

// =============================================================================
// Handlers
// =============================================================================

type fakePanicHandler struct {
	mu    sync.Mutex
	pools []string
}

func (h *fakePanicHandler) HandlePanic(poolName string, phase string, panicInfo any, stackTrace []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pools = append(h.pools, poolName)
}

func (h *fakePanicHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pools)
}

type fakeMetrics struct {
	mu       sync.Mutex
	frames   int
	commands map[WorkerState]int
	skipped  map[string]int
	panics   int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{commands: make(map[WorkerState]int), skipped: make(map[string]int)}
}

func (m *fakeMetrics) RecordFrameDuration(time.Duration) {
	m.mu.Lock()
	m.frames++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordCommandDuration(poolName string, state WorkerState, duration time.Duration) {
	m.mu.Lock()
	m.commands[state]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordRegionSkipped(poolName string, reason string) {
	m.mu.Lock()
	m.skipped[reason]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordPanic(poolName string, panicInfo any) {
	m.mu.Lock()
	m.panics++
	m.mu.Unlock()
}

func (m *fakeMetrics) skippedCount(reason string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skipped[reason]
}

type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(msg string, fields ...Field) {}
func (l *recordingLogger) Info(msg string, fields ...Field)  {}
func (l *recordingLogger) Error(msg string, fields ...Field) {}

func (l *recordingLogger) Warn(msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

func newTestEnv() (*renderEnv, *fakePanicHandler) {
	panics := &fakePanicHandler{}
	config := DefaultCoordinatorConfig()
	config.PanicHandler = panics
	config.Culler = &fakeCuller{}
	return newRenderEnv(config), panics
}
