package headless

import (
	"sync"
	"sync/atomic"

	"github.com/Swind/go-frame-pipeline/core"
)

// Lens is a perspective projection. A non-positive FOV is rejected by GSG.SetLens.
type Lens struct {
	FOV float64
}

// Scene is a named scene graph root with a fixed object count.
type Scene struct {
	Name    string
	Objects int
}

// Camera binds a Lens to a Scene. Either may be nil.
type Camera struct {
	mu    sync.Mutex
	lens  *Lens
	scene *Scene
}

var _ core.Camera = (*Camera)(nil)

// NewCamera creates a camera with a 60 degree lens looking at a one-object scene.
func NewCamera(scene string) *Camera {
	return &Camera{lens: &Lens{FOV: 60}, scene: &Scene{Name: scene, Objects: 1}}
}

func (c *Camera) Lens() core.Lens {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lens == nil {
		return nil
	}
	return c.lens
}

func (c *Camera) Scene() core.Scene {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scene == nil {
		return nil
	}
	return c.scene
}

// SetLens replaces the lens; nil removes it.
func (c *Camera) SetLens(lens *Lens) {
	c.mu.Lock()
	c.lens = lens
	c.mu.Unlock()
}

// SetScene replaces the scene; nil removes it.
func (c *Camera) SetScene(scene *Scene) {
	c.mu.Lock()
	c.scene = scene
	c.mu.Unlock()
}

// Region is a display region rendered through a Camera.
type Region struct {
	name   string
	active atomic.Bool

	mu     sync.Mutex
	camera *Camera
}

var _ core.DisplayRegion = (*Region)(nil)

// NewRegion creates an active region.
func NewRegion(name string, camera *Camera) *Region {
	r := &Region{name: name, camera: camera}
	r.active.Store(true)
	return r
}

func (r *Region) Name() string { return r.name }

func (r *Region) IsActive() bool { return r.active.Load() }

// SetActive turns rendering of the region on or off.
func (r *Region) SetActive(active bool) { r.active.Store(active) }

func (r *Region) Camera() core.Camera {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.camera == nil {
		return nil
	}
	return r.camera
}

// SetCamera replaces the camera; nil removes it.
func (r *Region) SetCamera(camera *Camera) {
	r.mu.Lock()
	r.camera = camera
	r.mu.Unlock()
}

// CameraRef returns the concrete camera, or nil.
func (r *Region) CameraRef() *Camera {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.camera
}
