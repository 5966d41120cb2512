package core

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// FrameCoordinator owns the registered windows and the worker pools that
// cull, draw and flip them, and drives the per-frame protocol:
//
//  1. finish the previous frame's deferred flip, if one is outstanding;
//  2. wait for every worker to be idle;
//  3. cycle the pipeline store and tick the clock;
//  4. run the app pool's frame on the calling goroutine;
//  5. dispatch DoFrame to every worker with work;
//  6. mark the flip as outstanding, or flip at once if there are no workers.
//
// Windows whose threading models name the same pool share that pool's single
// worker; that is how work is pooled across windows.
//
// Callbacks made by the coordinator (Window, GSG, Culler methods) must not
// call back into the coordinator: RenderFrame holds its lock while they run on
// the app pool and while it waits for workers.
type FrameCoordinator struct {
	mu sync.Mutex

	config *CoordinatorConfig
	env    *renderEnv

	windows []*WindowHandle
	app     *WorkerPool
	pools   map[string]*WorkerPool
	workers map[string]*Worker

	needsSync   bool
	frame       uint64
	lastSkipped int64
	history     frameHistory
}

// NewFrameCoordinator creates a coordinator. A nil config uses DefaultCoordinatorConfig.
func NewFrameCoordinator(config *CoordinatorConfig) *FrameCoordinator {
	config = config.withDefaults()
	env := newRenderEnv(config)
	return &FrameCoordinator{
		config:  config,
		env:     env,
		app:     newWorkerPool("", env),
		pools:   make(map[string]*WorkerPool),
		workers: make(map[string]*Worker),
		history: newFrameHistory(config.HistoryCapacity),
	}
}

// AddWindow asks pipe for a new window and registers it under threadingModel.
// It returns nil if the window could not be created; creation is not retried.
func (c *FrameCoordinator) AddWindow(pipe Pipe, name string, threadingModel string) *WindowHandle {
	logger := c.config.Logger

	if pipe == nil {
		logger.Error("Cannot add window", F("window", name),
			F("error", fmt.Errorf("%w: no pipe", ErrWindowCreation)))
		return nil
	}
	win, err := pipe.MakeOutput(name, Properties{Title: name})
	if err == nil && win == nil {
		err = fmt.Errorf("pipe returned no window")
	}
	if err != nil {
		logger.Error("Cannot add window", F("window", name),
			F("error", fmt.Errorf("%w: %w", ErrWindowCreation, err)))
		return nil
	}

	model := ParseThreadingModel(threadingModel)
	if c.config.SingleThreaded && !model.IsSingleThreaded() {
		logger.Warn("Threading model ignored, rendering single-threaded",
			F("window", name), F("model", threadingModel), F("error", ErrThreadingUnsupported))
		model = ThreadingModel{CullSorting: model.CullSorting}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	h := newWindowHandle(name, win, model)

	cull := c.poolFor(model.CullName, name)
	if model.CullSorting {
		cull.AddWindow(CullSet, h)
		c.poolFor(model.DrawName, name).AddWindow(DrawSet, h)
	} else {
		cull.AddWindow(CDrawSet, h)
	}
	c.app.AddWindow(WindowMgmtSet, h)

	c.windows = append(c.windows, h)

	logger.Info("Window added",
		F("window", name), F("id", h.id.String()), F("model", model.String()))
	return h
}

// poolFor returns the pool with the given name, starting a worker for it on
// first use. Must be called with c.mu held.
func (c *FrameCoordinator) poolFor(name string, window string) *WorkerPool {
	if name == "" {
		return c.app
	}
	if pool, ok := c.pools[name]; ok {
		c.config.Logger.Debug("Window shares existing worker",
			F("pool", name), F("window", window))
		return pool
	}

	pool := newWorkerPool(name, c.env)
	c.pools[name] = pool
	c.workers[name] = newWorker(pool, c.env)

	c.config.Logger.Info("Worker started", F("pool", name))
	return pool
}

// RemoveWindow unregisters h and stages its teardown in every pool. The GSG
// is released later by the pool that draws the window, and the window is
// closed once that has happened. It returns false if h is not registered.
func (c *FrameCoordinator) RemoveWindow(h *WindowHandle) bool {
	if h == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.windows, h)
	if i < 0 {
		c.config.Logger.Debug("Cannot remove window",
			F("window", h.name), F("error", ErrUnknownWindow))
		return false
	}
	c.windows = slices.Delete(c.windows, i, i+1)

	c.removeFromPools(h)
	c.runApp("pending", c.app.DoPending)

	c.config.Logger.Info("Window removed", F("window", h.name), F("id", h.id.String()))
	return true
}

// removeFromPools routes teardown of h. Must be called with c.mu held.
func (c *FrameCoordinator) removeFromPools(h *WindowHandle) {
	if err := h.lifecycle.advance(WindowPendingRelease, ""); err != nil {
		c.config.Logger.Error("Cannot stage window teardown",
			F("window", h.name), F("error", err))
	}
	c.app.RemoveWindow(h)
	for _, pool := range c.pools {
		pool.RemoveWindow(h)
	}
}

// RemoveAllWindows tears down every window and terminates and joins every
// worker. Close is requested for every window the app pool manages; windows
// that still hold a GSG are closed by DoPending after their owner releases it.
func (c *FrameCoordinator) RemoveAllWindows() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Close requests go out while the app pool still manages the windows.
	c.runApp("close", c.app.DoClose)

	old := c.windows
	c.windows = nil
	for _, h := range old {
		c.removeFromPools(h)
	}
	c.runApp("pending", c.app.DoPending)

	c.terminateWorkers()

	// Workers released their GSGs on the way out; close what was waiting on that.
	c.runApp("pending", c.app.DoPending)
	c.needsSync = false

	c.config.Logger.Info("All windows removed", F("windows", len(old)))
}

// terminateWorkers releases, stops and joins every worker. Must be called with c.mu held.
func (c *FrameCoordinator) terminateWorkers() {
	var g errgroup.Group
	for _, w := range c.workers {
		g.Go(func() error {
			w.dispatch(WorkerDoRelease)
			w.terminate()
			return nil
		})
	}
	_ = g.Wait()

	for name := range c.workers {
		c.config.Logger.Info("Worker stopped", F("pool", name))
	}
	c.workers = make(map[string]*Worker)
	c.pools = make(map[string]*WorkerPool)
}

// RenderFrame renders one frame. It never returns an error or panics because
// of a collaborator: failing regions are skipped and panics are recovered.
func (c *FrameCoordinator) RenderFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()

	if c.needsSync {
		c.flipFrame()
	}

	workers := c.sortedWorkers()
	for _, w := range workers {
		w.awaitIdle()
	}

	// Nothing else runs now: this is the only place frame-global state changes.
	c.config.Pipeline.Cycle()
	c.config.Clock.Tick()
	c.frame++

	c.runApp("pending", c.app.DoPending)
	c.runApp("frame", c.app.DoFrame)

	var dispatched []string
	for _, w := range workers {
		if !w.pool.HasWork() {
			continue
		}
		w.dispatch(WorkerDoFrame)
		dispatched = append(dispatched, w.Name())
	}

	c.needsSync = true
	immediate := len(workers) == 0
	if immediate {
		c.flipFrame()
	}

	finished := time.Now()
	skipped := c.env.skipped.Load()
	c.history.Add(FrameRecord{
		Frame:              c.frame,
		StartedAt:          start,
		FinishedAt:         finished,
		Duration:           finished.Sub(start),
		Windows:            len(c.windows),
		Dispatched:         dispatched,
		SkippedRegions:     skipped - c.lastSkipped,
		FlippedImmediately: immediate,
	})
	c.lastSkipped = skipped
	c.config.Metrics.RecordFrameDuration(finished.Sub(start))
}

// SyncFrame performs the outstanding flip of the last rendered frame, if any.
func (c *FrameCoordinator) SyncFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.needsSync {
		c.flipFrame()
	}
}

// flipFrame waits for every worker, signals each to flip without waiting for
// the flips to finish, then flips the app pool. Must be called with c.mu held.
func (c *FrameCoordinator) flipFrame() {
	workers := c.sortedWorkers()
	for _, w := range workers {
		w.awaitIdle()
	}
	for _, w := range workers {
		w.dispatch(WorkerDoFlip)
	}
	c.runApp("flip", c.app.DoFlip)
	c.needsSync = false
}

// RenderSubframe culls and draws a single region on the calling goroutine,
// bypassing the worker pools. It is meant for nested and offscreen passes
// and does not take the coordinator lock.
func (c *FrameCoordinator) RenderSubframe(gsg GSG, region DisplayRegion, cullSorting bool) error {
	if gsg == nil || region == nil {
		return &RenderError{Reason: ReasonNoTarget}
	}
	err := c.env.renderSubframe(gsg, region, cullSorting)
	if err != nil {
		c.env.regionSkipped("", err)
	}
	return err
}

// runApp runs app pool work on the calling goroutine, recovering panics.
func (c *FrameCoordinator) runApp(phase string, fn func()) {
	defer c.env.recoverPanic("", phase)
	fn()
}

// sortedWorkers returns the workers in name order. Must be called with c.mu held.
func (c *FrameCoordinator) sortedWorkers() []*Worker {
	workers := make([]*Worker, 0, len(c.workers))
	for _, w := range c.workers {
		workers = append(workers, w)
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].Name() < workers[j].Name() })
	return workers
}

// Windows returns the registered windows in registration order.
func (c *FrameCoordinator) Windows() []*WindowHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.windows)
}

// Pools returns the names of the named pools, sorted.
func (c *FrameCoordinator) Pools() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.pools))
	for name := range c.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NumWorkers returns the number of running workers.
func (c *FrameCoordinator) NumWorkers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.workers)
}

// NeedsSync reports whether a flip is outstanding.
func (c *FrameCoordinator) NeedsSync() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needsSync
}

// FrameCount returns the number of frames rendered.
func (c *FrameCoordinator) FrameCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Stats returns a snapshot of the coordinator and its pools, app pool first.
func (c *FrameCoordinator) Stats() CoordinatorStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	pools := []PoolStats{c.app.Stats()}
	for _, w := range c.sortedWorkers() {
		pools = append(pools, w.pool.Stats())
	}
	return CoordinatorStats{
		Frame:     c.frame,
		Windows:   len(c.windows),
		Workers:   len(c.workers),
		NeedsSync: c.needsSync,
		Pools:     pools,
	}
}

// WorkerStats returns a snapshot of every worker, in name order.
func (c *FrameCoordinator) WorkerStats() []WorkerStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]WorkerStats, 0, len(c.workers))
	for _, w := range c.sortedWorkers() {
		out = append(out, w.Stats())
	}
	return out
}

// RecentFrames returns up to limit frame records, newest first.
func (c *FrameCoordinator) RecentFrames(limit int) []FrameRecord {
	return c.history.Recent(limit)
}

// LastFrame returns the most recent frame record.
func (c *FrameCoordinator) LastFrame() (FrameRecord, bool) {
	return c.history.Last()
}
