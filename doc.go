// Package framepipeline coordinates a multi-stage rendering pipeline across
// worker goroutines.
//
// Every frame, each window's display regions are culled (visible geometry is
// determined and sorted), drawn (sent to the window's graphics context) and
// finally flipped (back buffer swapped to the screen). Each window names the
// pools responsible for its cull and draw work with a threading model such as
// "cull/draw"; windows naming the same pool share that pool's single worker.
//
// # Quick Start
//
// Create a coordinator and open windows through a Pipe:
//
//	coordinator := framepipeline.NewFrameCoordinator(nil)
//	defer coordinator.RemoveAllWindows()
//
//	pipe := headless.NewPipe(1)
//	coordinator.AddWindow(pipe, "main", "cull/draw")
//
// Then drive the frame loop:
//
//	for running {
//		coordinator.RenderFrame()
//	}
//	coordinator.SyncFrame()
//
// # Threading Models
//
// The descriptor format is "[-]cullname[/drawname]":
//
//	""           cull and draw on the goroutine calling RenderFrame (the app pool)
//	"draw"       cull and draw on the "draw" worker
//	"cull/draw"  cull on the "cull" worker, draw on the "draw" worker
//	"-draw"      cull and draw together, region by region, on the "draw" worker
//
// # Frame Protocol
//
// RenderFrame first completes the previous frame's flip if it is still
// outstanding, waits until every worker is idle, cycles the pipeline store and
// ticks the clock, renders the app pool's windows, and dispatches the frame to
// every worker with work. The flip of the new frame is deferred until
// SyncFrame or the next RenderFrame, so workers keep drawing while the caller
// prepares the next frame. Without any workers the frame is flipped before
// RenderFrame returns.
//
// # Window Teardown
//
// RemoveWindow stages a window's teardown. Its graphics context is released
// by the pool that draws it, and the window is closed only after that. A
// WindowHandle's State reports progress through WindowPendingRelease,
// WindowReleased, WindowPendingClose and WindowClosed.
//
// # Failures
//
// Display regions without a camera, lens or scene, or whose lens or scene the
// graphics context rejects, are skipped for the frame. Panics raised by
// collaborators are recovered and reported to the configured PanicHandler;
// the frame continues.
package framepipeline
