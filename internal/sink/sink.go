// Package sink delivers rendered pages to their destination. The orchestration
// is identical for files and push streams; only the sink function differs.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nats-io/nats.go"

	"github.com/paninibuild/panini/internal/errors"
	"github.com/paninibuild/panini/internal/render"
	"github.com/paninibuild/panini/internal/retry"
)

// Sink is invoked once per rendered page.
type Sink func(render.RenderedPage) error

// File returns a sink that writes each page under destDir, mirroring the
// page's logical output path.
func File(destDir string) Sink {
	return func(rp render.RenderedPage) error {
		target := filepath.Join(destDir, rp.Page.OutputPath())
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.SinkWriteFailed(rp.Page.Name, err)
		}
		if err := os.WriteFile(target, []byte(rp.Output), 0o644); err != nil {
			return errors.SinkWriteFailed(rp.Page.Name, err)
		}
		return nil
	}
}

// StreamPayload is the JSON shape published per page by the NATS sink.
type StreamPayload struct {
	Page    string `json:"page"`
	Path    string `json:"path"`
	Output  string `json:"output"`
	Errored bool   `json:"errored"`
	Error   string `json:"error,omitempty"`
}

// Publisher is the subset of *nats.Conn the stream sink needs; it keeps the
// sink testable without a running server.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// Stream returns a sink that publishes each rendered page to a NATS subject
// for push-stream consumers (dev servers, live-reload frontends). Transient
// publish failures are retried with the default backoff policy.
func Stream(pub Publisher, subject string) Sink {
	return StreamWithPolicy(pub, subject, retry.DefaultPolicy())
}

// StreamWithPolicy is Stream with an explicit retry policy.
func StreamWithPolicy(pub Publisher, subject string, policy retry.Policy) Sink {
	return func(rp render.RenderedPage) error {
		payload := StreamPayload{
			Page:    rp.Page.Name,
			Path:    rp.Page.OutputPath(),
			Output:  rp.Output,
			Errored: rp.Err != nil,
		}
		if rp.Err != nil {
			payload.Error = rp.Err.Error()
		}

		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal stream payload: %w", err)
		}
		err = policy.Do(func() error {
			return pub.Publish(subject, data)
		})
		if err != nil {
			return errors.SinkWriteFailed(rp.Page.Name, err)
		}
		return nil
	}
}

// Clean removes the destination folder before a fresh write pass.
func Clean(destDir string) error {
	if destDir == "" || destDir == "/" {
		return fmt.Errorf("refusing to clean %q", destDir)
	}
	return os.RemoveAll(destDir)
}
