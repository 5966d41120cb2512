package core

import (
	"slices"
	"sync"
	"sync/atomic"
)

// WindowSet selects one of the work queues of a WorkerPool.
type WindowSet int

const (
	// CullSet windows are culled by this pool; results are cached for the draw pool.
	CullSet WindowSet = iota
	// DrawSet windows draw their cached cull results in this pool.
	DrawSet
	// CDrawSet windows are culled and drawn together in one pass.
	CDrawSet
	// WindowMgmtSet windows get property updates and event pumping from this pool.
	WindowMgmtSet
)

func (s WindowSet) String() string {
	switch s {
	case CullSet:
		return "cull"
	case DrawSet:
		return "draw"
	case CDrawSet:
		return "cdraw"
	case WindowMgmtSet:
		return "window"
	default:
		return "unknown"
	}
}

// WorkerPool aggregates the window work queues serviced by one goroutine:
// a Worker for a named pool, or the RenderFrame caller for the app pool.
//
// The sets are guarded by the pool's own mutex, never by the coordinator lock.
// Do* methods other than DoPending must only be called from the servicing
// goroutine.
type WorkerPool struct {
	name string
	env  *renderEnv

	mu             sync.Mutex
	cull           []*WindowHandle
	draw           []*WindowHandle
	cdraw          []*WindowHandle
	window         []*WindowHandle
	pendingRelease []*WindowHandle
	pendingClose   []*WindowHandle

	// panics counts collaborator panics recovered per window.
	panics atomic.Int64
}

func newWorkerPool(name string, env *renderEnv) *WorkerPool {
	return &WorkerPool{name: name, env: env}
}

// Name returns the pool name; the app pool's name is empty.
func (p *WorkerPool) Name() string {
	return p.name
}

// AddWindow inserts h into the given set.
func (p *WorkerPool) AddWindow(set WindowSet, h *WindowHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch set {
	case CullSet:
		p.cull = appendUnique(p.cull, h)
	case DrawSet:
		p.draw = appendUnique(p.draw, h)
	case CDrawSet:
		p.cdraw = appendUnique(p.cdraw, h)
	case WindowMgmtSet:
		p.window = appendUnique(p.window, h)
	}
}

// RemoveWindow removes h from every set and stages its teardown. A window
// drawn by this pool moves to pending-release so that its GSG is released
// here; a managed window is asked to close and, unless already closed, moves
// to pending-close until its GSG is gone.
func (p *WorkerPool) RemoveWindow(h *WindowHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cull, _ = removeHandle(p.cull, h)

	var inDraw, inCDraw, inWindow bool
	p.draw, inDraw = removeHandle(p.draw, h)
	p.cdraw, inCDraw = removeHandle(p.cdraw, h)
	if inDraw || inCDraw {
		p.pendingRelease = appendUnique(p.pendingRelease, h)
	}

	p.window, inWindow = removeHandle(p.window, h)
	if inWindow {
		h.window.RequestProperties(Properties{Close: true})
		if !h.window.IsClosed() {
			p.pendingClose = appendUnique(p.pendingClose, h)
		}
	}
}

// HasWork reports whether any set, including the pending sets, is non-empty.
func (p *WorkerPool) HasWork() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cull)+len(p.draw)+len(p.cdraw)+len(p.window)+
		len(p.pendingRelease)+len(p.pendingClose) > 0
}

// DoFrame culls the cull set into bins, draws the draw set, culls and draws
// the cdraw set together, then services managed windows.
func (p *WorkerPool) DoFrame() {
	p.mu.Lock()
	cull := slices.Clone(p.cull)
	draw := slices.Clone(p.draw)
	cdraw := slices.Clone(p.cdraw)
	p.mu.Unlock()

	p.eachWindow("cull", cull, func(h *WindowHandle) { p.env.cullWindow(p.name, h) })
	p.eachWindow("draw", draw, func(h *WindowHandle) { p.env.drawWindow(p.name, h) })
	p.eachWindow("cdraw", cdraw, func(h *WindowHandle) { p.env.cullAndDrawWindow(p.name, h) })
	p.DoWindows()
}

// eachWindow runs fn for every window, so a panic in one window's
// collaborators is reported and the remaining windows are still serviced.
func (p *WorkerPool) eachWindow(phase string, windows []*WindowHandle, fn func(*WindowHandle)) {
	for _, h := range windows {
		p.serviceWindow(phase, h, fn)
	}
}

func (p *WorkerPool) serviceWindow(phase string, h *WindowHandle, fn func(*WindowHandle)) {
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			p.env.reportPanic(p.name, phase, r, F("window", h.name))
		}
	}()
	fn(h)
}

// DoWindows applies pending property changes and pumps events for managed windows.
func (p *WorkerPool) DoWindows() {
	p.mu.Lock()
	windows := slices.Clone(p.window)
	p.mu.Unlock()

	p.eachWindow("windows", windows, func(h *WindowHandle) {
		h.window.SetPropertiesNow()
		h.window.ProcessEvents()
	})
}

// DoFlip swaps buffers for every active window this pool draws.
func (p *WorkerPool) DoFlip() {
	p.mu.Lock()
	flip := slices.Concat(p.draw, p.cdraw)
	p.mu.Unlock()

	p.eachWindow("flip", flip, func(h *WindowHandle) {
		if !h.window.IsActive() {
			return
		}
		h.window.BeginFlip()
		h.window.EndFlip()
	})
}

// DoRelease releases the GSG of every window this pool draws. Used only when
// the pool's worker is being torn down.
func (p *WorkerPool) DoRelease() {
	p.mu.Lock()
	release := slices.Concat(p.draw, p.cdraw)
	p.mu.Unlock()

	for _, h := range release {
		h.window.ReleaseGSG()
	}
}

// DoClose asks every managed window to close. Used only at teardown.
// A window still holding its GSG only records the request; DoPending
// finishes the close once the owning pool has released the GSG.
func (p *WorkerPool) DoClose() {
	p.mu.Lock()
	windows := slices.Clone(p.window)
	p.mu.Unlock()

	for _, h := range windows {
		h.window.RequestProperties(Properties{Close: true})
		h.window.SetPropertiesNow()
	}
}

// DoPending drains the staged teardown. Every pending release is performed;
// a pending close is performed only once the window's GSG has been released,
// otherwise it is kept for a later call.
func (p *WorkerPool) DoPending() {
	p.mu.Lock()
	release := p.pendingRelease
	p.pendingRelease = nil
	closing := p.pendingClose
	p.pendingClose = nil
	p.mu.Unlock()

	for _, h := range release {
		if err := h.lifecycle.advance(WindowReleased, p.name); err != nil {
			p.env.logger.Error("Cannot release window",
				F("pool", poolLabel(p.name)), F("window", h.name), F("error", err))
			continue
		}
		h.window.ReleaseGSG()
		// Already closed by the window system: nothing left to wait for.
		if h.window.IsClosed() {
			p.finishClose(h)
		}
	}

	var keep []*WindowHandle
	for _, h := range closing {
		if !p.tryClose(h) {
			keep = append(keep, h)
		}
	}
	if len(keep) > 0 {
		p.mu.Lock()
		p.pendingClose = append(keep, p.pendingClose...)
		p.mu.Unlock()
	}
}

// tryClose advances h toward Closed and reports whether it got there.
func (p *WorkerPool) tryClose(h *WindowHandle) bool {
	switch h.State() {
	case WindowReleased:
		if err := h.lifecycle.advance(WindowPendingClose, p.name); err != nil {
			return false
		}
	case WindowPendingClose:
	case WindowClosed:
		return true
	default:
		return false
	}

	h.window.RequestProperties(Properties{Close: true})
	h.window.SetPropertiesNow()
	if !h.window.IsClosed() {
		return false
	}
	return h.lifecycle.advance(WindowClosed, p.name) == nil
}

func (p *WorkerPool) finishClose(h *WindowHandle) {
	if err := h.lifecycle.advance(WindowPendingClose, p.name); err != nil {
		return
	}
	_ = h.lifecycle.advance(WindowClosed, p.name)
}

// Stats returns a snapshot of the pool's set sizes.
func (p *WorkerPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Name:           poolLabel(p.name),
		Cull:           len(p.cull),
		Draw:           len(p.draw),
		CDraw:          len(p.cdraw),
		Window:         len(p.window),
		PendingRelease: len(p.pendingRelease),
		PendingClose:   len(p.pendingClose),
	}
}

// contains reports whether h is in the given set.
func (p *WorkerPool) contains(set WindowSet, h *WindowHandle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch set {
	case CullSet:
		return slices.Contains(p.cull, h)
	case DrawSet:
		return slices.Contains(p.draw, h)
	case CDrawSet:
		return slices.Contains(p.cdraw, h)
	case WindowMgmtSet:
		return slices.Contains(p.window, h)
	}
	return false
}

func appendUnique(set []*WindowHandle, h *WindowHandle) []*WindowHandle {
	if slices.Contains(set, h) {
		return set
	}
	return append(set, h)
}

func removeHandle(set []*WindowHandle, h *WindowHandle) ([]*WindowHandle, bool) {
	i := slices.Index(set, h)
	if i < 0 {
		return set, false
	}
	return slices.Delete(set, i, i+1), true
}
