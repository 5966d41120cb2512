package core

import (
	"sync/atomic"
	"time"
)

// WorkerState is the command a Worker is executing.
type WorkerState int32

const (
	WorkerWait WorkerState = iota
	WorkerDoFrame
	WorkerDoFlip
	WorkerDoRelease
	WorkerTerminate
)

func (s WorkerState) String() string {
	switch s {
	case WorkerWait:
		return "wait"
	case WorkerDoFrame:
		return "frame"
	case WorkerDoFlip:
		return "flip"
	case WorkerDoRelease:
		return "release"
	case WorkerTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// Worker binds a dedicated goroutine to one named WorkerPool.
//
// The coordinator hands it one command at a time over an unbuffered channel.
// When the command completes the worker resets itself to Wait and signals
// idle; the coordinator consumes that signal before it sends again, so
// awaiting idle is the barrier that proves the worker is not mid-command.
//
// Only the coordinator, under its own lock, moves a worker away from Wait.
type Worker struct {
	pool *WorkerPool
	env  *renderEnv

	commands chan WorkerState
	idle     chan struct{}
	stopped  chan struct{}

	state atomic.Int32

	// busy is set between dispatch and the matching idle signal.
	// Guarded by the coordinator lock.
	busy       bool
	terminated bool

	commandCount  atomic.Uint64
	panicCount    atomic.Int64
	lastCommand   atomic.Int32
	lastCommandAt atomic.Int64
}

// newWorker creates a Worker for pool and starts its goroutine.
func newWorker(pool *WorkerPool, env *renderEnv) *Worker {
	w := &Worker{
		pool:     pool,
		env:      env,
		commands: make(chan WorkerState),
		idle:     make(chan struct{}, 1),
		stopped:  make(chan struct{}),
	}

	go w.runLoop()

	return w
}

// Name returns the name of the pool the worker services.
func (w *Worker) Name() string {
	return w.pool.name
}

// Pool returns the pool the worker services.
func (w *Worker) Pool() *WorkerPool {
	return w.pool
}

// State returns the command currently executing, or WorkerWait.
func (w *Worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

// Stats returns a snapshot of the worker's counters.
func (w *Worker) Stats() WorkerStats {
	var lastAt time.Time
	if ns := w.lastCommandAt.Load(); ns != 0 {
		lastAt = time.Unix(0, ns)
	}
	return WorkerStats{
		Name:          w.Name(),
		State:         w.State(),
		Commands:      w.commandCount.Load(),
		Panics:        w.panicCount.Load() + w.pool.panics.Load(),
		LastCommand:   WorkerState(w.lastCommand.Load()),
		LastCommandAt: lastAt,
	}
}

// awaitIdle blocks until the worker has finished its current command.
func (w *Worker) awaitIdle() {
	if !w.busy {
		return
	}
	<-w.idle
	w.busy = false
}

// dispatch waits for the worker to be idle and hands it cmd without waiting
// for cmd to complete.
func (w *Worker) dispatch(cmd WorkerState) {
	if w.terminated {
		return
	}
	w.awaitIdle()
	w.busy = true
	w.state.Store(int32(cmd))
	w.commands <- cmd
}

// terminate waits for the current command, then stops the goroutine and joins it.
func (w *Worker) terminate() {
	if w.terminated {
		return
	}
	w.dispatch(WorkerTerminate)
	w.terminated = true
	<-w.stopped
	w.busy = false
}

// runLoop is the core of the worker, it occupies a dedicated goroutine.
func (w *Worker) runLoop() {
	defer close(w.stopped)

	for cmd := range w.commands {
		w.execute(cmd)

		if cmd == WorkerTerminate {
			return
		}

		w.state.Store(int32(WorkerWait))
		w.idle <- struct{}{}
	}
}

func (w *Worker) execute(cmd WorkerState) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			w.panicCount.Add(1)
			w.env.reportPanic(w.pool.name, cmd.String(), r)
		}
		w.commandCount.Add(1)
		w.lastCommand.Store(int32(cmd))
		w.lastCommandAt.Store(time.Now().UnixNano())
		w.env.metrics.RecordCommandDuration(w.pool.name, cmd, time.Since(start))
	}()

	// Teardown requested from other goroutines never waits on anything but this.
	w.pool.DoPending()

	switch cmd {
	case WorkerDoFrame:
		w.pool.DoFrame()
	case WorkerDoFlip:
		w.pool.DoFlip()
	case WorkerDoRelease:
		w.pool.DoRelease()
	case WorkerTerminate:
		w.pool.DoClose()
	}
}
