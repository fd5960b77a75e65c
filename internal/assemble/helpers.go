package assemble

import (
	"fmt"

	"github.com/paninibuild/panini/internal/engine"
	"github.com/paninibuild/panini/internal/locale"
	"github.com/paninibuild/panini/internal/pages"
)

// Helpers produces the callable helper functions visible to a page's
// template.
//
// Helper sets vary by engine capability, not engine name: engines shipping a
// first-party helper ecosystem only receive the repeat loop-helper on top of
// it, while the rest get the full generic library. With built-ins disabled,
// templates receive zero injected helpers.
func Helpers(page *pages.Page, eng engine.Engine, builtinsEnabled bool, locales locale.Table) map[string]any {
	if !builtinsEnabled {
		return map[string]any{}
	}

	helpers := map[string]any{
		// currentPage lets navigation templates test the rendering page.
		"currentPage": func(name string) bool { return name == page.Name },
	}

	if eng.Supports(engine.CapI18n) && page.Locale != "" {
		pageLocale := page.Locale
		helpers["translate"] = func(key string) string {
			return locales.Translate(pageLocale, key)
		}
	}

	if eng.Supports(engine.CapHelperLibrary) {
		helpers["repeat"] = repeatHelper
		return helpers
	}

	for name, fn := range genericLibrary() {
		helpers[name] = fn
	}
	return helpers
}

// repeatHelper returns an n-element slice so templates can range a fixed
// number of iterations.
func repeatHelper(n int) []int {
	if n < 0 {
		n = 0
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// genericLibrary is the helper set for engines without a native helper
// ecosystem: loop and data-shaping plumbing only, no content transforms.
func genericLibrary() map[string]any {
	return map[string]any{
		"repeat": repeatHelper,
		"list":   func(items ...any) []any { return items },
		"dict": func(pairs ...any) (map[string]any, error) {
			if len(pairs)%2 != 0 {
				return nil, fmt.Errorf("dict requires an even number of arguments")
			}
			d := make(map[string]any, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				key, ok := pairs[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict key %d is not a string", i/2)
				}
				d[key] = pairs[i+1]
			}
			return d, nil
		},
		"default": func(value, fallback any) any {
			if value == nil || value == "" {
				return fallback
			}
			return value
		},
	}
}
