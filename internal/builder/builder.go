// Package builder owns the build lifecycle: it loads the data snapshot,
// gates compilation on readiness, drives the render orchestrator, and hands
// results to an output sink.
package builder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paninibuild/panini/internal/assemble"
	"github.com/paninibuild/panini/internal/config"
	"github.com/paninibuild/panini/internal/data"
	"github.com/paninibuild/panini/internal/engine"
	"github.com/paninibuild/panini/internal/errors"
	"github.com/paninibuild/panini/internal/locale"
	"github.com/paninibuild/panini/internal/logfields"
	"github.com/paninibuild/panini/internal/metrics"
	"github.com/paninibuild/panini/internal/observability"
	"github.com/paninibuild/panini/internal/pages"
	"github.com/paninibuild/panini/internal/render"
	"github.com/paninibuild/panini/internal/sink"
)

// State is the coordinator's lifecycle state.
type State string

const (
	// StateConfigured: constructed with valid input and engine, no setup yet.
	StateConfigured State = "configured"

	// StateNotReady: a setup pass is in flight; compiles wait for its signal.
	StateNotReady State = "not-ready"

	// StateReady: the current snapshot is loaded and compiles proceed.
	StateReady State = "ready"
)

// BuildStatus represents the outcome of a compile.
type BuildStatus string

const (
	BuildStatusSuccess BuildStatus = "success"
	BuildStatusFailed  BuildStatus = "failed"
)

// BuildResult is the aggregate of one compile invocation. It is handed to
// the caller once and not retained by the coordinator.
type BuildResult struct {
	Status     BuildStatus
	BuildID    string
	PageCount  int
	ErrorCount int
	Pages      []render.RenderedPage
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// Coordinator drives setup and compile passes over one project.
//
// Construction-time validation is terminal: New returns an error for a
// missing input folder or unknown engine and no usable instance exists.
// Callers must not call Setup concurrently with Compile and expect results
// from a single snapshot; each compile otherwise holds one snapshot
// reference for its whole pass.
type Coordinator struct {
	cfg      *config.Config
	eng      engine.Engine
	bus      *Bus
	recorder metrics.Recorder
	workers  int

	mu       sync.Mutex
	state    State
	snapshot *data.Snapshot
	ready    chan struct{}
	setupErr error
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithBus injects the event bus the coordinator publishes lifecycle events
// on. Defaults to a fresh in-memory bus.
func WithBus(bus *Bus) CoordinatorOption {
	return func(c *Coordinator) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) CoordinatorOption {
	return func(c *Coordinator) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithWorkers bounds page render concurrency.
func WithWorkers(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// New validates the configuration, constructs the engine, and returns a
// configured coordinator. Any failure here is a fatal configuration error.
func New(cfg *config.Config, options ...CoordinatorOption) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	eng, err := engine.New(cfg.Engine, engine.Options{
		LayoutsDir:    cfg.LayoutsDir(),
		DefaultLayout: cfg.Layouts.Default,
	})
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		cfg:      cfg,
		eng:      eng,
		bus:      NewBus(),
		recorder: metrics.NoopRecorder{},
		workers:  4,
		state:    StateConfigured,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Bus returns the coordinator's event bus for subscribers.
func (c *Coordinator) Bus() *Bus { return c.bus }

// Engine returns the active engine.
func (c *Coordinator) Engine() engine.Engine { return c.eng }

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Setup (re)loads global data, locales, and collections into a fresh
// immutable snapshot. The three loads run concurrently; readiness fires only
// after all of them resolve. Any failure fails the whole pass: the snapshot
// is not replaced and waiting compiles receive the error.
func (c *Coordinator) Setup(ctx context.Context) error {
	buildID := uuid.NewString()
	ctx = observability.WithBuildID(ctx, buildID)
	ctx = observability.WithStage(ctx, "setup")
	start := time.Now()

	// Re-arm the ready signal before anything loads, so a compile issued
	// mid-setup waits for this pass, not a previously fired one.
	c.mu.Lock()
	c.state = StateNotReady
	c.setupErr = nil
	c.ready = make(chan struct{})
	readyCh := c.ready
	c.mu.Unlock()

	c.bus.Publish(ctx, Event{Name: EventSetupStart, BuildID: buildID})
	c.bus.Publish(ctx, Event{Name: EventRefreshing, BuildID: buildID})

	var (
		wg          sync.WaitGroup
		global      map[string]any
		locales     locale.Table
		collections map[string]data.Collection
		globalErr   error
		localeErr   error
		collectErr  error
		engineErr   error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		global, globalErr = data.LoadGlobalData(ctx, c.cfg.DataDir())
	}()
	go func() {
		defer wg.Done()
		locales, localeErr = locale.Load(c.cfg.LocalesDir())
	}()
	go func() {
		defer wg.Done()
		collections, collectErr = data.LoadCollections(ctx, c.cfg.CollectionsDir())
	}()
	go func() {
		defer wg.Done()
		engineErr = c.eng.Setup(ctx)
	}()
	wg.Wait()

	err := firstError(
		wrapSetup("data", globalErr),
		wrapSetup("locales", localeErr),
		wrapSetup("collections", collectErr),
		wrapSetup("engine", engineErr),
	)
	if err == nil {
		err = wrapSetup("collections", data.BuildCollections(collections, c.eng))
	}

	// Publish only after releasing the lock: handlers run synchronously and
	// may call back into the coordinator.
	c.mu.Lock()
	if err != nil {
		c.setupErr = err
		close(readyCh) // release waiters so they observe the failure
		c.mu.Unlock()

		c.bus.Publish(ctx, Event{Name: EventError, BuildID: buildID, Err: err})
		observability.ErrorContext(ctx, "setup failed", logfields.Error(err))
		return err
	}

	c.snapshot = data.NewSnapshot(global, collections, locales)
	c.state = StateReady
	close(readyCh)
	c.mu.Unlock()

	c.recorder.ObserveSetupDuration(time.Since(start))
	c.bus.Publish(ctx, Event{Name: EventSetupDone, BuildID: buildID})
	observability.InfoContext(ctx, "setup complete")
	return nil
}

// Compile renders every discovered page against the current snapshot and
// hands each result to the output sink in discovery order.
//
// If a setup pass is in flight, Compile suspends until its ready signal
// fires; if that pass failed, Compile fails with its error.
func (c *Coordinator) Compile(ctx context.Context, out sink.Sink) (*BuildResult, error) {
	snap, err := c.awaitReady(ctx)
	if err != nil {
		return nil, err
	}

	buildID := uuid.NewString()
	ctx = observability.WithBuildID(ctx, buildID)
	start := time.Now()

	c.bus.Publish(ctx, Event{Name: EventParsing, BuildID: buildID})
	discovered, err := pages.Discover(ctx, c.cfg.PagesDir(), snap.Locales)
	if err != nil {
		c.recorder.IncBuildOutcome(string(BuildStatusFailed))
		c.bus.Publish(ctx, Event{Name: EventError, BuildID: buildID, Err: err})
		return nil, errors.SetupFailed("pages", err)
	}

	c.bus.Publish(ctx, Event{Name: EventBuilding, BuildID: buildID})
	orchestrator := render.New(c.eng, assemble.Options{
		Layouts: assemble.LayoutOptions{
			Default:   c.cfg.Layouts.Default,
			PerFolder: c.cfg.Layouts.PerFolder,
		},
		Builtins: c.cfg.BuiltinsEnabled(),
	}, render.WithConcurrency(c.workers), render.WithRecorder(c.recorder))

	results, errorCount := orchestrator.Render(ctx, discovered, snap)

	for _, result := range results {
		if out == nil {
			continue
		}
		if err := out(result); err != nil {
			c.recorder.IncBuildOutcome(string(BuildStatusFailed))
			c.bus.Publish(ctx, Event{Name: EventError, BuildID: buildID, Err: err})
			return nil, err
		}
	}

	end := time.Now()
	c.recorder.ObserveBuildDuration(end.Sub(start))
	c.recorder.IncBuildOutcome(string(BuildStatusSuccess))
	c.bus.Publish(ctx, Event{
		Name:       EventBuilt,
		BuildID:    buildID,
		PageCount:  len(results),
		ErrorCount: errorCount,
	})

	return &BuildResult{
		Status:     BuildStatusSuccess,
		BuildID:    buildID,
		PageCount:  len(results),
		ErrorCount: errorCount,
		Pages:      results,
		StartTime:  start,
		EndTime:    end,
		Duration:   end.Sub(start),
	}, nil
}

// CompileStream is Compile with a push-stream sink: every rendered page is
// published to the given subject instead of written to disk.
func (c *Coordinator) CompileStream(ctx context.Context, pub sink.Publisher, subject string) (*BuildResult, error) {
	return c.Compile(ctx, sink.Stream(pub, subject))
}

// awaitReady blocks until the current setup cycle signals readiness and
// returns the snapshot reference this compile holds for its whole pass.
func (c *Coordinator) awaitReady(ctx context.Context) (*data.Snapshot, error) {
	c.mu.Lock()
	state := c.state
	readyCh := c.ready
	snap := c.snapshot
	setupErr := c.setupErr
	c.mu.Unlock()

	switch state {
	case StateReady:
		return snap, nil
	case StateConfigured:
		return nil, errors.New(errors.CategorySetup, errors.SeverityError, "compile called before setup")
	}

	if setupErr != nil {
		return nil, setupErr
	}

	select {
	case <-readyCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setupErr != nil {
		return nil, c.setupErr
	}
	return c.snapshot, nil
}

func wrapSetup(stage string, err error) error {
	if err == nil {
		return nil
	}
	return errors.SetupFailed(stage, err)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
