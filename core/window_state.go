package core

import (
	"fmt"
	"sync"
)

// WindowState tracks a window through deferred teardown.
//
//	Live -> PendingRelease -> Released -> PendingClose -> Closed
//
// Only the window's draw pool may move it past PendingRelease, because the
// graphics context must be released on the goroutine that draws with it.
type WindowState int32

const (
	WindowLive WindowState = iota
	WindowPendingRelease
	WindowReleased
	WindowPendingClose
	WindowClosed
)

func (s WindowState) String() string {
	switch s {
	case WindowLive:
		return "live"
	case WindowPendingRelease:
		return "pending_release"
	case WindowReleased:
		return "released"
	case WindowPendingClose:
		return "pending_close"
	case WindowClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var windowTransitions = map[WindowState]WindowState{
	WindowLive:           WindowPendingRelease,
	WindowPendingRelease: WindowReleased,
	WindowReleased:       WindowPendingClose,
	WindowPendingClose:   WindowClosed,
}

// CanTransition reports whether a window may move directly from one state to another.
func CanTransition(from, to WindowState) bool {
	next, ok := windowTransitions[from]
	return ok && next == to
}

type windowLifecycle struct {
	mu    sync.Mutex
	state WindowState
	owner string
}

func newWindowLifecycle(owner string) windowLifecycle {
	return windowLifecycle{state: WindowLive, owner: owner}
}

func (l *windowLifecycle) State() WindowState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// advance moves to the next state on behalf of the named pool.
func (l *windowLifecycle) advance(to WindowState, pool string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !CanTransition(l.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, l.state, to)
	}
	if to == WindowReleased && pool != l.owner {
		return fmt.Errorf("%w: pool %q, owner %q", ErrNotOwner, pool, l.owner)
	}
	l.state = to
	return nil
}
