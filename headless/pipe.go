package headless

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Swind/go-frame-pipeline/core"
)

// ErrPipeClosed is returned by MakeOutput after Close.
var ErrPipeClosed = errors.New("headless pipe closed")

// Pipe makes headless windows.
type Pipe struct {
	// Regions is the number of display regions per window. Zero means one.
	Regions int

	mu      sync.Mutex
	closed  bool
	windows []*Window
}

var _ core.Pipe = (*Pipe)(nil)

// NewPipe creates a pipe whose windows have the given number of regions.
func NewPipe(regions int) *Pipe {
	return &Pipe{Regions: regions}
}

// MakeOutput creates a new window named name.
func (p *Pipe) MakeOutput(name string, props core.Properties) (core.Window, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("make %q: %w", name, ErrPipeClosed)
	}

	regions := p.Regions
	if regions <= 0 {
		regions = 1
	}
	w := newWindow(name, props, regions)
	p.windows = append(p.windows, w)
	return w, nil
}

// Windows returns every window made so far.
func (p *Pipe) Windows() []*Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Window(nil), p.windows...)
}

// Close makes further MakeOutput calls fail.
func (p *Pipe) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
