// Package engine defines the templating engine contract consumed by the
// rendering pipeline, plus a registry of available engine adapters.
//
// Call sites never branch on engine names. Engines declare capabilities and
// the pipeline asks for them, so adding an adapter never touches the core.
package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/paninibuild/panini/internal/errors"
)

// Capability names a feature an engine may declare support for.
type Capability string

const (
	// CapLayouts: the engine wraps page output in a layout template.
	CapLayouts Capability = "layouts"

	// CapFolderLayouts: the engine honors per-folder layout conventions.
	CapFolderLayouts Capability = "folder-layouts"

	// CapI18n: the engine accepts a translate helper for localized pages.
	CapI18n Capability = "i18n"

	// CapHelperLibrary: the engine ships a first-party helper ecosystem, so
	// only the minimal built-ins are injected on top of it.
	CapHelperLibrary Capability = "helper-library"
)

// Engine is the templating capability interface consumed by the pipeline.
type Engine interface {
	// Name returns the engine's registered identity.
	Name() string

	// Supports reports whether the engine declares the given capability.
	Supports(cap Capability) bool

	// Setup prepares the engine for a build pass (layout cache, etc.).
	Setup(ctx context.Context) error

	// Render renders one template source against the merged page data.
	Render(templateSource string, data map[string]any) (string, error)
}

// ErrorReporter is implemented by engines that render a human-readable error
// report for pages whose template failed. The orchestrator falls back to a
// plain report otherwise. data is the page's assembled data with the error
// marker already injected, so engines can present it in-band.
type ErrorReporter interface {
	RenderError(pageName string, data map[string]any, renderErr error) string
}

// CollectionIndexer is implemented by engines that pre-compile or index
// collection templates during the buildCollections step.
type CollectionIndexer interface {
	IndexCollection(name, templateSource string) error
}

// Options carries construction parameters common to all adapters.
type Options struct {
	// LayoutsDir is the absolute layouts folder, empty if the project has none.
	LayoutsDir string

	// DefaultLayout is the project-wide default layout name.
	DefaultLayout string
}

// Factory constructs an engine adapter from options.
type Factory func(opts Options) (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes an engine factory available under a name. Later
// registrations replace earlier ones.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New constructs the named engine. Unknown names are a fatal configuration
// error: the instance using it never becomes ready.
func New(name string, opts Options) (Engine, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.UnknownEngine(name)
	}

	eng, err := factory(opts)
	if err != nil {
		return nil, errors.EngineSetupFailed(name, err)
	}
	return eng, nil
}

// Names returns the registered engine names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
