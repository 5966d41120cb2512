package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-frame-pipeline/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	FrameBuckets   []float64
	CommandBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	frameDurationSeconds   prom.Histogram
	commandDurationSeconds *prom.HistogramVec
	regionSkippedTotal     *prom.CounterVec
	panicTotal             *prom.CounterVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// defaultFrameBuckets span a 1ms to ~1s frame budget.
var defaultFrameBuckets = prom.ExponentialBuckets(0.001, 2, 11)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "framepipeline"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	frameBuckets := opts.FrameBuckets
	if len(frameBuckets) == 0 {
		frameBuckets = defaultFrameBuckets
	}
	commandBuckets := opts.CommandBuckets
	if len(commandBuckets) == 0 {
		commandBuckets = defaultFrameBuckets
	}

	frameHist := prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "frame_duration_seconds",
		Help:      "Time spent inside RenderFrame in seconds.",
		Buckets:   frameBuckets,
	})
	commandVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "Pool command execution duration in seconds.",
		Buckets:   commandBuckets,
	}, []string{"pool", "command"})
	skippedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "region_skipped_total",
		Help:      "Total number of display regions skipped for a frame.",
	}, []string{"pool", "reason"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "panic_total",
		Help:      "Total number of recovered panics.",
	}, []string{"pool"})

	var err error
	if frameHist, err = registerCollector(reg, frameHist); err != nil {
		return nil, err
	}
	if commandVec, err = registerCollector(reg, commandVec); err != nil {
		return nil, err
	}
	if skippedVec, err = registerCollector(reg, skippedVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		frameDurationSeconds:   frameHist,
		commandDurationSeconds: commandVec,
		regionSkippedTotal:     skippedVec,
		panicTotal:             panicVec,
	}, nil
}

// RecordFrameDuration records how long one RenderFrame call took.
func (m *MetricsExporter) RecordFrameDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.frameDurationSeconds.Observe(duration.Seconds())
}

// RecordCommandDuration records a pool command's execution time.
func (m *MetricsExporter) RecordCommandDuration(poolName string, state core.WorkerState, duration time.Duration) {
	if m == nil {
		return
	}
	m.commandDurationSeconds.WithLabelValues(normalizeLabel(poolName, "unknown"), state.String()).Observe(duration.Seconds())
}

// RecordRegionSkipped records a skipped display region.
func (m *MetricsExporter) RecordRegionSkipped(poolName string, reason string) {
	if m == nil {
		return
	}
	m.regionSkippedTotal.WithLabelValues(normalizeLabel(poolName, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

// RecordPanic records recovered panics.
func (m *MetricsExporter) RecordPanic(poolName string, panicInfo any) {
	if m == nil {
		return
	}
	m.panicTotal.WithLabelValues(normalizeLabel(poolName, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
