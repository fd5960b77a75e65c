// Package metrics defines observability hooks for setup, build, and
// per-page render outcomes.
package metrics

import "time"

// PageResult enumerates per-page render outcomes.
type PageResult string

const (
	PageRendered PageResult = "rendered"
	PageErrored  PageResult = "errored"
)

// Recorder defines observability hooks for build and render metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe on the NoopRecorder so injection stays optional.
type Recorder interface {
	ObserveSetupDuration(d time.Duration)
	ObserveBuildDuration(d time.Duration)
	ObservePageRenderDuration(d time.Duration)
	IncPageResult(result PageResult)
	IncBuildOutcome(outcome string) // outcome: success|failed
	SetRenderConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveSetupDuration(time.Duration)      {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)      {}
func (NoopRecorder) ObservePageRenderDuration(time.Duration) {}
func (NoopRecorder) IncPageResult(PageResult)                {}
func (NoopRecorder) IncBuildOutcome(string)                  {}
func (NoopRecorder) SetRenderConcurrency(int)                {}
