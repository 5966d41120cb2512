package core

import (
	"testing"
	"time"
)

// TestWorker_DispatchReturnsToWait tests the command hand-off
// Main test items:
// 1. A dispatched DoFrame runs the pool's frame on the worker goroutine
// 2. After the idle barrier the worker is back in Wait
// 3. The command is counted
func TestWorker_DispatchReturnsToWait(t *testing.T) {
	env, _ := newTestEnv()
	pool := newWorkerPool("draw", env)
	win := newFakeWindow("w")
	pool.AddWindow(CDrawSet, newTestHandle("w", "-draw", win))

	w := newWorker(pool, env)
	defer w.terminate()

	w.dispatch(WorkerDoFrame)
	w.awaitIdle()

	if got := w.State(); got != WorkerWait {
		t.Errorf("State() = %s, want wait", got)
	}
	if win.frames.Load() != 1 {
		t.Errorf("frames = %d, want 1", win.frames.Load())
	}
	if win.drawGoroutine.Load() == getGoroutineID() {
		t.Error("frame ran on the dispatching goroutine")
	}
	if stats := w.Stats(); stats.Commands != 1 || stats.LastCommand != WorkerDoFrame {
		t.Errorf("Stats() = %+v", stats)
	}
}

// TestWorker_BarrierWaitsForCommand tests that awaitIdle blocks until the command ends
// Main test items:
// 1. A slow DoFrame is dispatched
// 2. The worker reports DoFrame while it runs
// 3. awaitIdle returns only after the frame finished
func TestWorker_BarrierWaitsForCommand(t *testing.T) {
	env, _ := newTestEnv()
	pool := newWorkerPool("draw", env)
	win := newFakeWindow("w")
	win.frameDelay = 50 * time.Millisecond
	pool.AddWindow(CDrawSet, newTestHandle("w", "-draw", win))

	w := newWorker(pool, env)
	defer w.terminate()

	w.dispatch(WorkerDoFrame)
	time.Sleep(10 * time.Millisecond)
	if got := w.State(); got != WorkerDoFrame {
		t.Errorf("State() during frame = %s, want frame", got)
	}

	w.awaitIdle()
	if win.drawing.Load() {
		t.Error("awaitIdle returned while the worker was mid-frame")
	}
	if win.frames.Load() != 1 {
		t.Errorf("frames = %d, want 1", win.frames.Load())
	}
}

func TestWorker_EveryCommandDrainsPendingFirst(t *testing.T) {
	env, _ := newTestEnv()
	pool := newWorkerPool("draw", env)
	win := newFakeWindow("w")
	h := newTestHandle("w", "draw", win)
	pool.AddWindow(DrawSet, h)

	w := newWorker(pool, env)
	defer w.terminate()

	_ = h.lifecycle.advance(WindowPendingRelease, "")
	pool.RemoveWindow(h)

	w.dispatch(WorkerDoFlip)
	w.awaitIdle()

	if win.releases.Load() != 1 {
		t.Fatalf("releases = %d, want 1", win.releases.Load())
	}
	if win.releaseGoroutine.Load() == getGoroutineID() {
		t.Error("GSG released on the dispatching goroutine")
	}
	if got := h.State(); got != WindowReleased {
		t.Errorf("State() = %s, want released", got)
	}
}

func TestWorker_PanicIsRecovered(t *testing.T) {
	env, panics := newTestEnv()
	pool := newWorkerPool("draw", env)
	win := newFakeWindow("w")
	win.panicOnFrame = true
	pool.AddWindow(CDrawSet, newTestHandle("w", "-draw", win))

	w := newWorker(pool, env)
	defer w.terminate()

	w.dispatch(WorkerDoFrame)
	w.awaitIdle()
	w.dispatch(WorkerDoFrame)
	w.awaitIdle()

	if got := panics.count(); got != 2 {
		t.Errorf("panics handled = %d, want 2", got)
	}
	if stats := w.Stats(); stats.Panics != 2 || stats.State != WorkerWait {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestWorker_TerminateJoins(t *testing.T) {
	env, _ := newTestEnv()
	pool := newWorkerPool("draw", env)
	w := newWorker(pool, env)

	w.dispatch(WorkerDoRelease)
	w.terminate()

	select {
	case <-w.stopped:
	default:
		t.Fatal("worker goroutine still running after terminate")
	}

	// Commands after terminate are dropped instead of blocking.
	done := make(chan struct{})
	go func() {
		w.dispatch(WorkerDoFrame)
		w.terminate()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch after terminate blocked")
	}
}
