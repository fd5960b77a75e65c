// Package assemble builds the merged data object each page's template
// renders against: global data, file attributes, front matter, page
// constants, and helpers, in that precedence order.
package assemble

import (
	"github.com/paninibuild/panini/internal/data"
	"github.com/paninibuild/panini/internal/engine"
	"github.com/paninibuild/panini/internal/pages"
)

// ErrorKey is the internal marker attached to a page's constants when that
// page failed to parse or render. Its presence tells the engine to present
// an error report instead of the intended content.
const ErrorKey = "_paniniError"

// Options carries the per-project assembly configuration.
type Options struct {
	Layouts  LayoutOptions
	Builtins bool
}

// Constants computes the per-page constant values injected above data and
// front matter: page name, resolved layout, root prefix, locale, and the
// error marker when a parse error occurred.
func Constants(page *pages.Page, layout string, hasLayout bool) map[string]any {
	constants := map[string]any{
		"page": page.Name,
		"root": page.RootPrefix(),
	}
	if hasLayout {
		constants["layout"] = layout
	}
	if page.Locale != "" {
		constants["locale"] = page.Locale
	}
	if page.ParseErr != nil {
		constants[ErrorKey] = page.ParseErr.Error()
	}
	return constants
}

// PageData merges the five sources into one flat-at-top-level object, lowest
// precedence first:
//
//  1. global data, spread by name
//  2. file-level attributes, shallow override
//  3. front matter, deep-merged over the result
//  4. page constants, shallow override
//  5. helpers, shallow override, last so a front-matter key can never shadow
//     a real helper
func PageData(page *pages.Page, global, constants, helpers map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(global)+len(page.FrontMatter)+len(constants)+len(helpers))

	Override(merged, global)
	Override(merged, page.Attributes)

	merged, err := DeepMerge(merged, page.FrontMatter)
	if err != nil {
		return nil, err
	}

	Override(merged, constants)
	Override(merged, helpers)
	return merged, nil
}

// Assemble resolves the page's layout, provisions its helpers, and produces
// the final data object for the engine.
func Assemble(page *pages.Page, snap *data.Snapshot, eng engine.Engine, opts Options) (map[string]any, error) {
	layout, hasLayout := ResolveLayout(page, eng, opts.Layouts)
	constants := Constants(page, layout, hasLayout)
	helpers := Helpers(page, eng, opts.Builtins, snap.Locales)
	return PageData(page, snap.Global, constants, helpers)
}
