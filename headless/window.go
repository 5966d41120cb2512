package headless

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Swind/go-frame-pipeline/core"
)

// Window is an offscreen core.Window.
type Window struct {
	name    string
	regions []*Region

	mu        sync.Mutex
	gsg       *GSG
	props     core.Properties
	requested *core.Properties
	closed    bool

	frames   atomic.Uint64
	flips    atomic.Uint64
	clears   atomic.Uint64
	events   atomic.Uint64
	releases atomic.Uint64
}

var _ core.Window = (*Window)(nil)

func newWindow(name string, props core.Properties, regions int) *Window {
	w := &Window{name: name, props: props, gsg: NewGSG()}
	for i := range regions {
		w.regions = append(w.regions, NewRegion(fmt.Sprintf("%s-%d", name, i), NewCamera(name)))
	}
	return w
}

// Name returns the window name.
func (w *Window) Name() string { return w.name }

// IsActive reports whether the window still has a graphics context and is open.
func (w *Window) IsActive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gsg != nil && !w.closed
}

func (w *Window) BeginFrame(mode core.FrameMode) bool {
	if !w.IsActive() {
		return false
	}
	if mode == core.FrameRender {
		w.frames.Add(1)
	}
	return true
}

func (w *Window) Clear() { w.clears.Add(1) }

func (w *Window) EndFrame(core.FrameMode) {}

func (w *Window) BeginFlip() {}

func (w *Window) EndFlip() { w.flips.Add(1) }

func (w *Window) NumRegions() int { return len(w.regions) }

func (w *Window) Region(i int) core.DisplayRegion {
	if i < 0 || i >= len(w.regions) {
		return nil
	}
	return w.regions[i]
}

// Regions returns the window's display regions.
func (w *Window) Regions() []*Region {
	return append([]*Region(nil), w.regions...)
}

func (w *Window) GSG() core.GSG {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gsg == nil {
		return nil
	}
	return w.gsg
}

// Graphics returns the concrete GSG, or nil once released.
func (w *Window) Graphics() *GSG {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gsg
}

func (w *Window) ReleaseGSG() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gsg != nil {
		w.gsg.deactivate()
		w.gsg = nil
		w.releases.Add(1)
	}
}

func (w *Window) RequestProperties(props core.Properties) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.requested = &props
}

// SetPropertiesNow applies the last requested properties. A close request is
// only honored once the graphics context has been released.
func (w *Window) SetPropertiesNow() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.requested == nil {
		return
	}
	req := *w.requested
	if req.Close {
		if w.gsg != nil {
			return
		}
		w.closed = true
		w.requested = nil
		return
	}

	if req.Title != "" {
		w.props.Title = req.Title
	}
	if req.Width > 0 {
		w.props.Width = req.Width
	}
	if req.Height > 0 {
		w.props.Height = req.Height
	}
	w.requested = nil
}

func (w *Window) IsClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Window) ProcessEvents() { w.events.Add(1) }

// Properties returns the applied properties.
func (w *Window) Properties() core.Properties {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.props
}

// WindowStats is a snapshot of a window's counters.
type WindowStats struct {
	Frames   uint64
	Flips    uint64
	Clears   uint64
	Events   uint64
	Releases uint64
	Closed   bool
}

// Stats returns the window's counters.
func (w *Window) Stats() WindowStats {
	return WindowStats{
		Frames:   w.frames.Load(),
		Flips:    w.flips.Load(),
		Clears:   w.clears.Load(),
		Events:   w.events.Load(),
		Releases: w.releases.Load(),
		Closed:   w.IsClosed(),
	}
}
