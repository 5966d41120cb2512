// Package headless provides offscreen implementations of the frame pipeline
// collaborators: a Pipe that makes windows without a display, a GSG that
// records draw calls instead of issuing them, and a Culler that produces a
// fixed number of draw calls per region.
//
// It is used by cmd/framedemo and the examples, and is handy for testing code
// that drives a core.FrameCoordinator.
package headless
