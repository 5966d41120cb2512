package headless

import (
	"sync"
	"sync/atomic"

	"github.com/Swind/go-frame-pipeline/core"
)

// GSG records draw work instead of issuing it.
type GSG struct {
	active atomic.Bool

	mu    sync.Mutex
	lens  core.Lens
	stack []core.DisplayRegion

	prepared atomic.Uint64
	cleared  atomic.Uint64
	scenes   atomic.Uint64
	draws    atomic.Uint64
}

var _ core.GSG = (*GSG)(nil)

// NewGSG creates an active GSG.
func NewGSG() *GSG {
	g := &GSG{}
	g.active.Store(true)
	return g
}

func (g *GSG) IsActive() bool { return g.active.Load() }

func (g *GSG) deactivate() { g.active.Store(false) }

// SetLens accepts any *Lens with a positive field of view.
func (g *GSG) SetLens(lens core.Lens) bool {
	l, ok := lens.(*Lens)
	if !ok || l.FOV <= 0 {
		return false
	}
	g.mu.Lock()
	g.lens = lens
	g.mu.Unlock()
	return true
}

func (g *GSG) PushRegion(region core.DisplayRegion) {
	g.mu.Lock()
	g.stack = append(g.stack, region)
	g.mu.Unlock()
}

func (g *GSG) PopRegion() {
	g.mu.Lock()
	if n := len(g.stack); n > 0 {
		g.stack = g.stack[:n-1]
	}
	g.mu.Unlock()
}

func (g *GSG) PrepareDisplayRegion(core.DisplayRegion) { g.prepared.Add(1) }

func (g *GSG) ClearRegion(core.DisplayRegion) { g.cleared.Add(1) }

func (g *GSG) BeginScene() bool {
	if !g.IsActive() {
		return false
	}
	g.scenes.Add(1)
	return true
}

func (g *GSG) EndScene() {}

// Draw records n draw calls.
func (g *GSG) Draw(n int) { g.draws.Add(uint64(n)) }

// Depth returns the number of regions currently pushed.
func (g *GSG) Depth() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.stack)
}

// GSGStats is a snapshot of a GSG's counters.
type GSGStats struct {
	Prepared uint64
	Cleared  uint64
	Scenes   uint64
	Draws    uint64
}

// Stats returns the GSG's counters.
func (g *GSG) Stats() GSGStats {
	return GSGStats{
		Prepared: g.prepared.Load(),
		Cleared:  g.cleared.Load(),
		Scenes:   g.scenes.Load(),
		Draws:    g.draws.Load(),
	}
}
