package core

import (
	"testing"
	"time"
)

func TestCycleData_PublishesOnCycle(t *testing.T) {
	d := NewCycleData(1)

	d.Write(2)
	if got := d.Read(); got != 1 {
		t.Errorf("Read() before cycle = %d, want 1", got)
	}

	d.Cycle()
	if got := d.Read(); got != 2 {
		t.Errorf("Read() after cycle = %d, want 2", got)
	}
}

func TestPipeline_CyclesRegisteredStages(t *testing.T) {
	p := NewPipeline()
	a := NewCycleData("a0")
	b := NewCycleData(0)
	p.Register(a)
	p.Register(b)
	p.Register(nil)

	a.Write("a1")
	b.Write(1)
	p.Cycle()

	if a.Read() != "a1" || b.Read() != 1 {
		t.Errorf("stages not cycled: %q %d", a.Read(), b.Read())
	}
	if got := p.Cycles(); got != 1 {
		t.Errorf("Cycles() = %d, want 1", got)
	}
}

func TestFrameClock_Tick(t *testing.T) {
	now := time.Unix(100, 0)
	clock := newFrameClockWithNow(func() time.Time { return now })

	now = now.Add(16 * time.Millisecond)
	clock.Tick()
	now = now.Add(20 * time.Millisecond)
	clock.Tick()

	if got := clock.FrameCount(); got != 2 {
		t.Errorf("FrameCount() = %d, want 2", got)
	}
	if got := clock.Dt(); got != 20*time.Millisecond {
		t.Errorf("Dt() = %v, want 20ms", got)
	}
	if !clock.FrameTime().Equal(now) {
		t.Errorf("FrameTime() = %v, want %v", clock.FrameTime(), now)
	}
}

// TestCoordinator_CyclesPipelineOncePerFrame wires the default pipeline into a coordinator
func TestCoordinator_CyclesPipelineOncePerFrame(t *testing.T) {
	pipeline := NewPipeline()
	clock := NewFrameClock()
	frameNumber := NewCycleData(uint64(0))
	pipeline.Register(frameNumber)

	config := DefaultCoordinatorConfig()
	config.Pipeline = pipeline
	config.Clock = clock
	c := NewFrameCoordinator(config)
	defer c.RemoveAllWindows()

	for i := 1; i <= 3; i++ {
		frameNumber.Write(uint64(i))
		c.RenderFrame()
	}

	if got := pipeline.Cycles(); got != 3 {
		t.Errorf("Cycles() = %d, want 3", got)
	}
	if got := clock.FrameCount(); got != 3 {
		t.Errorf("FrameCount() = %d, want 3", got)
	}
	if got := frameNumber.Read(); got != 3 {
		t.Errorf("published frame = %d, want 3", got)
	}
}
