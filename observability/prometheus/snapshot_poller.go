package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-frame-pipeline/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

const snapshotNamespace = "framepipeline"

// CoordinatorSnapshotProvider provides current coordinator stats snapshots.
// *core.FrameCoordinator satisfies it.
type CoordinatorSnapshotProvider interface {
	Stats() core.CoordinatorStats
	WorkerStats() []core.WorkerStats
}

// SnapshotPoller periodically exports coordinator Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	coordinatorsMu sync.RWMutex
	coordinators   map[string]CoordinatorSnapshotProvider

	frame     *prom.GaugeVec
	windows   *prom.GaugeVec
	workers   *prom.GaugeVec
	needsSync *prom.GaugeVec

	poolWindows *prom.GaugeVec

	workerState    *prom.GaugeVec
	workerCommands *prom.GaugeVec
	workerPanics   *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	frame := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: snapshotNamespace,
		Name:      "coordinator_frame",
		Help:      "Number of frames rendered by the coordinator.",
	}, []string{"coordinator"})
	windows := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: snapshotNamespace,
		Name:      "coordinator_windows",
		Help:      "Number of live windows.",
	}, []string{"coordinator"})
	workers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: snapshotNamespace,
		Name:      "coordinator_workers",
		Help:      "Number of named worker pools.",
	}, []string{"coordinator"})
	needsSync := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: snapshotNamespace,
		Name:      "coordinator_needs_sync",
		Help:      "Whether a flip is owed (1=owed, 0=flipped).",
	}, []string{"coordinator"})

	poolWindows := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: snapshotNamespace,
		Name:      "pool_windows",
		Help:      "Windows per pool set.",
	}, []string{"coordinator", "pool", "set"})

	workerState := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: snapshotNamespace,
		Name:      "worker_state",
		Help:      "Current worker command (0=wait, 1=frame, 2=flip, 3=release, 4=terminate).",
	}, []string{"coordinator", "worker"})
	workerCommands := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: snapshotNamespace,
		Name:      "worker_commands",
		Help:      "Worker executed command count snapshot.",
	}, []string{"coordinator", "worker"})
	workerPanics := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: snapshotNamespace,
		Name:      "worker_panics",
		Help:      "Worker recovered panic count snapshot.",
	}, []string{"coordinator", "worker"})

	var err error
	for _, vec := range []**prom.GaugeVec{
		&frame, &windows, &workers, &needsSync, &poolWindows,
		&workerState, &workerCommands, &workerPanics,
	} {
		if *vec, err = registerCollector(reg, *vec); err != nil {
			return nil, err
		}
	}

	return &SnapshotPoller{
		interval:       interval,
		coordinators:   make(map[string]CoordinatorSnapshotProvider),
		frame:          frame,
		windows:        windows,
		workers:        workers,
		needsSync:      needsSync,
		poolWindows:    poolWindows,
		workerState:    workerState,
		workerCommands: workerCommands,
		workerPanics:   workerPanics,
	}, nil
}

// AddCoordinator adds or replaces a coordinator snapshot provider by name.
func (p *SnapshotPoller) AddCoordinator(name string, provider CoordinatorSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "coordinator")
	p.coordinatorsMu.Lock()
	p.coordinators[name] = provider
	p.coordinatorsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.coordinatorsMu.RLock()
	defer p.coordinatorsMu.RUnlock()

	for name, provider := range p.coordinators {
		stats := provider.Stats()
		p.frame.WithLabelValues(name).Set(float64(stats.Frame))
		p.windows.WithLabelValues(name).Set(float64(stats.Windows))
		p.workers.WithLabelValues(name).Set(float64(stats.Workers))
		if stats.NeedsSync {
			p.needsSync.WithLabelValues(name).Set(1)
		} else {
			p.needsSync.WithLabelValues(name).Set(0)
		}

		for _, pool := range stats.Pools {
			poolName := normalizeLabel(pool.Name, "app")
			p.poolWindows.WithLabelValues(name, poolName, "cull").Set(float64(pool.Cull))
			p.poolWindows.WithLabelValues(name, poolName, "draw").Set(float64(pool.Draw))
			p.poolWindows.WithLabelValues(name, poolName, "cdraw").Set(float64(pool.CDraw))
			p.poolWindows.WithLabelValues(name, poolName, "window").Set(float64(pool.Window))
			p.poolWindows.WithLabelValues(name, poolName, "pending_release").Set(float64(pool.PendingRelease))
			p.poolWindows.WithLabelValues(name, poolName, "pending_close").Set(float64(pool.PendingClose))
		}

		for _, worker := range provider.WorkerStats() {
			workerName := normalizeLabel(worker.Name, "unknown")
			p.workerState.WithLabelValues(name, workerName).Set(float64(worker.State))
			p.workerCommands.WithLabelValues(name, workerName).Set(float64(worker.Commands))
			p.workerPanics.WithLabelValues(name, workerName).Set(float64(worker.Panics))
		}
	}
}
