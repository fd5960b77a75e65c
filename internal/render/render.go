// Package render runs the per-page rendering batch with partial-failure
// isolation: one page's error never aborts the rest.
package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paninibuild/panini/internal/assemble"
	"github.com/paninibuild/panini/internal/data"
	"github.com/paninibuild/panini/internal/engine"
	"github.com/paninibuild/panini/internal/errors"
	"github.com/paninibuild/panini/internal/logfields"
	"github.com/paninibuild/panini/internal/metrics"
	"github.com/paninibuild/panini/internal/observability"
	"github.com/paninibuild/panini/internal/pages"
)

// RenderedPage is the outcome of one page render. Err is set when the page's
// template failed; Output then carries the rendered error report so a build
// with N pages always produces N outputs.
type RenderedPage struct {
	Page   *pages.Page
	Output string
	Err    error
}

// Orchestrator renders all discovered pages through the engine.
type Orchestrator struct {
	eng         engine.Engine
	opts        assemble.Options
	concurrency int
	recorder    metrics.Recorder
}

// Option configures orchestrator behavior.
type Option func(*Orchestrator)

// WithConcurrency bounds how many pages render at once. Values below one
// mean sequential.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// New creates an orchestrator for the given engine and assembly options.
func New(eng engine.Engine, opts assemble.Options, options ...Option) *Orchestrator {
	o := &Orchestrator{
		eng:         eng,
		opts:        opts,
		concurrency: 1,
		recorder:    metrics.NoopRecorder{},
	}
	for _, opt := range options {
		opt(o)
	}
	o.recorder.SetRenderConcurrency(o.concurrency)
	return o
}

// Render renders every page against the snapshot. Pages render concurrently
// up to the configured bound, but the result slice preserves discovery
// order so output is reproducible across runs with identical inputs.
//
// errorCount reports how many pages carry a captured error.
func (o *Orchestrator) Render(ctx context.Context, batch []*pages.Page, snap *data.Snapshot) ([]RenderedPage, int) {
	results := make([]RenderedPage, len(batch))

	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup

	for i, page := range batch {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, page *pages.Page) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = o.renderOne(ctx, page, snap)
		}(i, page)
	}
	wg.Wait()

	errorCount := 0
	for _, result := range results {
		if result.Err != nil {
			errorCount++
		}
	}
	return results, errorCount
}

// renderOne assembles and renders a single page, converting any failure into
// an in-band error report.
func (o *Orchestrator) renderOne(ctx context.Context, page *pages.Page, snap *data.Snapshot) RenderedPage {
	ctx = observability.WithPage(ctx, page.Name)
	start := time.Now()

	output, pageData, err := o.tryRender(page, snap)
	o.recorder.ObservePageRenderDuration(time.Since(start))

	if err == nil {
		o.recorder.IncPageResult(metrics.PageRendered)
		return RenderedPage{Page: page, Output: output}
	}

	o.recorder.IncPageResult(metrics.PageErrored)
	observability.WarnContext(ctx, "page render failed", logfields.Error(err))
	renderErr := errors.PageRenderFailed(page.Name, err)
	return RenderedPage{
		Page:   page,
		Output: o.errorReport(page, pageData, err),
		Err:    renderErr,
	}
}

func (o *Orchestrator) tryRender(page *pages.Page, snap *data.Snapshot) (output string, pageData map[string]any, err error) {
	// A helper or engine panic is contained the same way a returned error is.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()

	pageData, err = assemble.Assemble(page, snap, o.eng, o.opts)
	if err != nil {
		return "", pageData, err
	}
	if page.ParseErr != nil {
		return "", pageData, page.ParseErr
	}
	output, err = o.eng.Render(page.Body, pageData)
	return output, pageData, err
}

// errorReport produces the page's replacement output. The error marker is
// injected into the page data so it reaches the engine in-band, the same way
// parse errors surface through the page constants. Presentation is delegated
// to the engine when it implements ErrorReporter.
func (o *Orchestrator) errorReport(page *pages.Page, pageData map[string]any, err error) string {
	if pageData == nil {
		pageData = map[string]any{"page": page.Name}
	}
	pageData[assemble.ErrorKey] = err.Error()

	if reporter, ok := o.eng.(engine.ErrorReporter); ok {
		return reporter.RenderError(page.Name, pageData, err)
	}
	return fmt.Sprintf("error rendering %s: %v", page.Name, err)
}
