package assemble

import (
	"github.com/paninibuild/panini/internal/engine"
	"github.com/paninibuild/panini/internal/pages"
)

// LayoutOptions carries the project's layout configuration.
type LayoutOptions struct {
	// Default is the project-wide default layout name.
	Default string

	// PerFolder maps a pages subfolder to the layout its pages use by
	// convention.
	PerFolder map[string]string
}

// ResolveLayout determines which layout applies to a page.
//
// Precedence: explicit `layout` front-matter key, then the per-folder
// convention when the engine supports it, then the project default. When the
// engine declares no layout support at all, ok is false and no layout
// constant is attached. A missing layout file is not detected here; it
// surfaces as a render error for that page.
func ResolveLayout(page *pages.Page, eng engine.Engine, opts LayoutOptions) (layout string, ok bool) {
	if !eng.Supports(engine.CapLayouts) {
		return "", false
	}

	if explicit, isString := page.FrontMatter["layout"].(string); isString && explicit != "" {
		return explicit, true
	}

	if eng.Supports(engine.CapFolderLayouts) {
		if folder := page.Folder(); folder != "" {
			if conventional, found := opts.PerFolder[folder]; found {
				return conventional, true
			}
		}
	}

	return opts.Default, true
}
