package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Swind/go-frame-pipeline/config"
	"github.com/Swind/go-frame-pipeline/core"
	"github.com/Swind/go-frame-pipeline/headless"
	obs "github.com/Swind/go-frame-pipeline/observability/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Render frames over headless windows",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
			},
			&cli.IntFlag{
				Name:    "frames",
				Aliases: []string{"n"},
				Value:   120,
				Usage:   "Number of frames to render (0 renders until interrupted)",
			},
			&cli.IntFlag{
				Name:  "fps",
				Value: 60,
				Usage: "Frame rate cap (0 renders as fast as possible)",
			},
			&cli.StringSliceFlag{
				Name:    "window",
				Aliases: []string{"w"},
				Usage:   "Window as name[=threading-model], repeatable",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address",
			},
			&cli.BoolFlag{
				Name:  "single-threaded",
				Usage: "Render every window on the calling goroutine",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},

		Action: RunAction,
	}
}

func RunAction(c *cli.Context) error {
	// 1. Build config
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	frames := c.Int("frames")
	if frames < 0 {
		return cli.Exit("frames must be >= 0", 1)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := core.NewSlogLogger(slog.New(slog.NewTextHandler(c.App.ErrWriter,
		&slog.HandlerOptions{Level: cfg.Coordinator.Level()})))

	// 2. Wire metrics
	var metrics core.Metrics
	var poller *obs.SnapshotPoller
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		exporter, err := obs.NewMetricsExporter(cfg.Metrics.Namespace, reg, obs.ExporterOptions{})
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
		}
		poller, err = obs.NewSnapshotPoller(reg, cfg.Metrics.PollInterval())
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
		}
		metrics = exporter

		shutdown := serveMetrics(cfg.Metrics.ListenAddr, reg, logger)
		defer shutdown()
	}

	// 3. Open windows
	coordinator := core.NewFrameCoordinator(newCoordinatorConfig(cfg, logger, metrics))
	defer coordinator.RemoveAllWindows()

	pipe := headless.NewPipe(0)
	for _, w := range cfg.Windows {
		pipe.Regions = w.Regions
		if coordinator.AddWindow(pipe, w.Name, w.ThreadingModel) == nil {
			return cli.Exit(fmt.Sprintf("Failed: cannot open window %q", w.Name), 1)
		}
	}

	if poller != nil {
		poller.AddCoordinator("framedemo", coordinator)
		poller.Start(ctx)
		defer poller.Stop()
	}

	// 4. Render
	rendered := renderLoop(ctx, coordinator, frames, c.Int("fps"))
	coordinator.SyncFrame()

	// 5. Format output
	printSummary(c.App.Writer, coordinator, rendered)
	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("single-threaded") {
		cfg.Coordinator.SingleThreaded = c.Bool("single-threaded")
	}
	if c.IsSet("log-level") {
		cfg.Coordinator.LogLevel = c.String("log-level")
	}
	if addr := c.String("metrics-addr"); addr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddr = addr
	}
	for _, arg := range c.StringSlice("window") {
		w, err := parseWindowFlag(arg)
		if err != nil {
			return nil, err
		}
		cfg.Windows = append(cfg.Windows, w)
	}
	if len(cfg.Windows) == 0 {
		cfg.Windows = []config.WindowConfig{{Name: "main"}}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parseWindowFlag parses "name[=threading-model]".
func parseWindowFlag(arg string) (config.WindowConfig, error) {
	name, model, _ := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return config.WindowConfig{}, fmt.Errorf("window %q: name is required", arg)
	}
	return config.WindowConfig{Name: name, ThreadingModel: strings.TrimSpace(model)}, nil
}

func newCoordinatorConfig(cfg *config.Config, logger core.Logger, metrics core.Metrics) *core.CoordinatorConfig {
	cc := cfg.CoordinatorConfig(logger, metrics)
	cc.Culler = headless.NewCuller()
	return cc
}

// renderLoop renders up to frames frames, or until ctx is done when frames is 0.
func renderLoop(ctx context.Context, coordinator *core.FrameCoordinator, frames int, fps int) int {
	var tick <-chan time.Time
	if fps > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
		tick = ticker.C
	}

	rendered := 0
	for frames == 0 || rendered < frames {
		select {
		case <-ctx.Done():
			return rendered
		default:
		}

		coordinator.RenderFrame()
		rendered++

		if tick != nil {
			select {
			case <-ctx.Done():
				return rendered
			case <-tick:
			}
		}
	}
	return rendered
}

func serveMetrics(addr string, reg *prom.Registry, logger core.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", core.F("addr", addr), core.F("error", err))
		}
	}()
	logger.Info("Serving metrics", core.F("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

func printSummary(out io.Writer, coordinator *core.FrameCoordinator, rendered int) {
	stats := coordinator.Stats()
	fmt.Fprintf(out, "✓ Rendered %d frames over %d windows with %d workers\n",
		rendered, stats.Windows, stats.Workers)

	for _, pool := range stats.Pools {
		fmt.Fprintf(out, "  pool %-8s cull=%d draw=%d cdraw=%d window=%d\n",
			pool.Name, pool.Cull, pool.Draw, pool.CDraw, pool.Window)
	}
	for _, w := range coordinator.WorkerStats() {
		fmt.Fprintf(out, "  worker %-6s commands=%d panics=%d\n", w.Name, w.Commands, w.Panics)
	}

	var total time.Duration
	recent := coordinator.RecentFrames(0)
	for _, f := range recent {
		total += f.Duration
	}
	if len(recent) > 0 {
		fmt.Fprintf(out, "  avg frame %v over last %d frames\n", total/time.Duration(len(recent)), len(recent))
	}
}
