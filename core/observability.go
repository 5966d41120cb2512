package core

import "time"

// FrameRecord captures one completed RenderFrame call.
type FrameRecord struct {
	Frame      uint64
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration

	Windows int

	// Dispatched lists the workers sent DoFrame, in name order.
	Dispatched []string

	// SkippedRegions counts regions skipped since the previous record.
	SkippedRegions int64

	// FlippedImmediately is true when no named workers existed and the
	// frame was flipped before RenderFrame returned.
	FlippedImmediately bool
}

// WorkerStats represents runtime observability state for a worker.
type WorkerStats struct {
	Name          string
	State         WorkerState
	Commands      uint64
	Panics        int64
	LastCommand   WorkerState
	LastCommandAt time.Time
}

// PoolStats is a snapshot of a pool's window sets.
type PoolStats struct {
	Name           string
	Cull           int
	Draw           int
	CDraw          int
	Window         int
	PendingRelease int
	PendingClose   int
}

// CoordinatorStats represents runtime observability state for a FrameCoordinator.
type CoordinatorStats struct {
	Frame     uint64
	Windows   int
	Workers   int
	NeedsSync bool
	Pools     []PoolStats
}
