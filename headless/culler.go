package headless

import (
	"sync/atomic"

	"github.com/Swind/go-frame-pipeline/core"
)

// Culler emits one draw call per scene object.
type Culler struct {
	culls atomic.Uint64
}

var _ core.Culler = (*Culler)(nil)

// NewCuller creates a Culler.
func NewCuller() *Culler {
	return &Culler{}
}

func (c *Culler) Cull(setup *core.SceneSetup, _ core.GSG) core.CullResult {
	c.culls.Add(1)
	objects := 0
	if scene, ok := setup.Scene.(*Scene); ok {
		objects = scene.Objects
	}
	return cullResult{objects: objects}
}

// Culls returns the number of regions culled.
func (c *Culler) Culls() uint64 { return c.culls.Load() }

type cullResult struct {
	objects int
}

func (r cullResult) Draw(gsg core.GSG) {
	if g, ok := gsg.(*GSG); ok {
		g.Draw(r.objects)
	}
}
