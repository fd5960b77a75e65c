package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-co-op/gocron/v2"
	"github.com/nats-io/nats.go"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/paninibuild/panini/internal/builder"
	"github.com/paninibuild/panini/internal/config"
	"github.com/paninibuild/panini/internal/eventstore"
	"github.com/paninibuild/panini/internal/metrics"
	"github.com/paninibuild/panini/internal/sink"
	"github.com/paninibuild/panini/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"panini.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output  string `short:"o" help:"Output directory for the generated site"`
		Workers int    `short:"w" help:"Page render concurrency" default:"4"`
	} `cmd:"" help:"Assemble the site once and write it to the output directory"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Daemon struct {
		Interval time.Duration `short:"i" help:"Rebuild interval" default:"5m"`
		Workers  int           `short:"w" help:"Page render concurrency" default:"4"`
	} `cmd:"" help:"Rebuild the site on a schedule, streaming pages when configured"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "build":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if CLI.Build.Output != "" {
			cfg.Output.Directory = CLI.Build.Output
		}
		if err := runBuild(cfg, CLI.Build.Workers); err != nil {
			slog.Error("Build failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
	case "daemon":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if err := runDaemon(cfg, CLI.Daemon.Interval, CLI.Daemon.Workers); err != nil {
			slog.Error("Daemon failed", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("panini %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
	}
}

func runBuild(cfg *config.Config, workers int) error {
	slog.Info("Starting site build",
		"input", cfg.Input,
		"engine", cfg.Engine,
		"output", cfg.Output.Directory)

	coordinator, cleanup, err := newCoordinator(cfg, workers, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer cleanup()

	subscribeProgress(coordinator.Bus())

	ctx := context.Background()
	if err := coordinator.Setup(ctx); err != nil {
		return err
	}

	out, closeSink, err := newSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	result, err := coordinator.Compile(ctx, out)
	if err != nil {
		return err
	}

	slog.Info("Build complete",
		"pages", result.PageCount,
		"errors", result.ErrorCount,
		"duration", result.Duration)
	return nil
}

func runInit(configPath string, force bool) error {
	slog.Info("Initializing configuration", "path", configPath, "force", force)
	return config.Init(configPath, force)
}

func runDaemon(cfg *config.Config, interval time.Duration, workers int) error {
	slog.Info("Starting daemon mode", "interval", interval)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Listen != "" {
		registry := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
		go serveMetrics(cfg.Metrics.Listen, registry)
	}

	coordinator, cleanup, err := newCoordinator(cfg, workers, recorder)
	if err != nil {
		return err
	}
	defer cleanup()

	subscribeProgress(coordinator.Bus())

	out, closeSink, err := newSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	rebuild := func() {
		if err := coordinator.Setup(ctx); err != nil {
			slog.Error("Scheduled setup failed", "error", err)
			return
		}
		result, err := coordinator.Compile(ctx, out)
		if err != nil {
			slog.Error("Scheduled build failed", "error", err)
			return
		}
		slog.Info("Scheduled build complete",
			"pages", result.PageCount,
			"errors", result.ErrorCount,
			"duration", result.Duration)
	}

	// First pass immediately; the scheduler covers subsequent rebuilds.
	rebuild()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	// A rebuild slower than the interval must not overlap the next one:
	// setup and compile on one coordinator are not safe to interleave.
	if _, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(rebuild),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return fmt.Errorf("schedule rebuild job: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			slog.Warn("Scheduler shutdown failed", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down daemon")
	return nil
}

// newCoordinator wires the build coordinator with its optional event store.
func newCoordinator(cfg *config.Config, workers int, recorder metrics.Recorder) (*builder.Coordinator, func(), error) {
	cleanup := func() {}

	options := []builder.CoordinatorOption{
		builder.WithWorkers(workers),
		builder.WithRecorder(recorder),
	}

	if cfg.Store.Path != "" {
		store, err := eventstore.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close event store", "error", err)
			}
		}
		options = append(options, builder.WithBus(builder.NewBusWithStore(store)))
	}

	coordinator, err := builder.New(cfg, options...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return coordinator, cleanup, nil
}

// newSink picks the output destination: a NATS stream when configured,
// otherwise the output directory on disk.
func newSink(cfg *config.Config) (sink.Sink, func(), error) {
	if cfg.Stream.URL != "" {
		conn, err := nats.Connect(cfg.Stream.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to stream: %w", err)
		}
		slog.Info("Streaming rendered pages", "url", cfg.Stream.URL, "subject", cfg.Stream.Subject)
		return sink.Stream(conn, cfg.Stream.Subject), conn.Close, nil
	}

	if cfg.Output.Clean {
		if err := sink.Clean(cfg.Output.Directory); err != nil {
			return nil, nil, err
		}
	}
	return sink.File(cfg.Output.Directory), func() {}, nil
}

// subscribeProgress logs lifecycle events as they happen.
func subscribeProgress(bus *builder.Bus) {
	bus.SubscribeAll(func(e builder.Event) {
		switch e.Name {
		case builder.EventSetupStart:
			slog.Debug("Setup started", "build_id", e.BuildID)
		case builder.EventSetupDone:
			slog.Info("Setup complete", "build_id", e.BuildID)
		case builder.EventParsing:
			slog.Debug("Parsing pages", "build_id", e.BuildID)
		case builder.EventBuilding:
			slog.Debug("Rendering pages", "build_id", e.BuildID)
		case builder.EventBuilt:
			slog.Info("Pages rendered",
				"build_id", e.BuildID,
				"pages", e.PageCount,
				"errors", e.ErrorCount)
		case builder.EventError:
			slog.Error("Build error", "build_id", e.BuildID, "error", e.Err)
		}
	})
}

func serveMetrics(listen string, registry *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(registry))
	slog.Info("Metrics endpoint listening", "addr", listen)
	if err := http.ListenAndServe(listen, mux); err != nil {
		slog.Error("Metrics endpoint failed", "error", err)
	}
}
