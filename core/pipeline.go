package core

import (
	"sync"
	"time"
)

// PipelineStore is the double-buffered store of frame-global state.
// Cycle publishes the generation written during the previous frame and opens
// the next one. The coordinator calls it exactly once per RenderFrame, after
// every worker has been brought to a halt.
type PipelineStore interface {
	Cycle()
}

// Clock advances frame time and statistics once per frame.
type Clock interface {
	Tick()
}

// Cycler is one stage registered with a Pipeline.
type Cycler interface {
	Cycle()
}

// Pipeline is the default PipelineStore. Cycling it cycles every registered stage.
type Pipeline struct {
	mu     sync.Mutex
	stages []Cycler
	cycles uint64
}

// NewPipeline creates an empty Pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Register adds a stage to be cycled with the pipeline.
func (p *Pipeline) Register(stage Cycler) {
	if stage == nil {
		return
	}
	p.mu.Lock()
	p.stages = append(p.stages, stage)
	p.mu.Unlock()
}

// Cycle publishes every registered stage.
func (p *Pipeline) Cycle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, stage := range p.stages {
		stage.Cycle()
	}
	p.cycles++
}

// Cycles returns how many times the pipeline has been cycled.
func (p *Pipeline) Cycles() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cycles
}

// CycleData is a double-buffered value. Writes go to the pending generation
// and become visible to Read after the owning pipeline cycles.
type CycleData[T any] struct {
	mu        sync.RWMutex
	pending   T
	published T
}

// NewCycleData creates a CycleData whose both generations hold initial.
func NewCycleData[T any](initial T) *CycleData[T] {
	return &CycleData[T]{pending: initial, published: initial}
}

// Write stores v in the pending generation.
func (d *CycleData[T]) Write(v T) {
	d.mu.Lock()
	d.pending = v
	d.mu.Unlock()
}

// Read returns the published generation.
func (d *CycleData[T]) Read() T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.published
}

// Cycle publishes the pending generation.
func (d *CycleData[T]) Cycle() {
	d.mu.Lock()
	d.published = d.pending
	d.mu.Unlock()
}

// FrameClock is the default Clock: a frame counter with wall-clock frame times.
type FrameClock struct {
	mu         sync.Mutex
	now        func() time.Time
	frameCount uint64
	frameTime  time.Time
	dt         time.Duration
}

// NewFrameClock creates a FrameClock reading time.Now.
func NewFrameClock() *FrameClock {
	return newFrameClockWithNow(time.Now)
}

func newFrameClockWithNow(now func() time.Time) *FrameClock {
	return &FrameClock{now: now, frameTime: now()}
}

// Tick starts a new frame.
func (c *FrameClock) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now()
	c.dt = t.Sub(c.frameTime)
	c.frameTime = t
	c.frameCount++
}

// FrameCount returns the number of ticks so far.
func (c *FrameClock) FrameCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameCount
}

// FrameTime returns the time of the most recent tick.
func (c *FrameClock) FrameTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameTime
}

// Dt returns the time elapsed between the two most recent ticks.
func (c *FrameClock) Dt() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dt
}
