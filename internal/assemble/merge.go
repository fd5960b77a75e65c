package assemble

import (
	"fmt"

	"dario.cat/mergo"
)

// The two merge primitives are deliberately separate. Deep merge applies
// only to the front-matter step of assembly; every other step is a flat
// top-level override. Collapsing them into one generic merge changes
// precedence semantics.

// Override copies src keys into dst, replacing existing values wholesale.
func Override(dst, src map[string]any) {
	for key, value := range src {
		dst[key] = value
	}
}

// DeepMerge returns a new map combining base and overlay recursively: nested
// maps merge key-by-key, and overlay wins on scalar conflicts and on any key
// present in both. Neither input is mutated.
func DeepMerge(base, overlay map[string]any) (map[string]any, error) {
	merged := copyTree(base)

	if err := mergo.Merge(&merged, overlay, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("deep merge: %w", err)
	}
	return merged, nil
}

// copyTree copies a structured value tree so merging never writes into a
// shared snapshot or a page's front matter.
func copyTree(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = copyValue(value)
	}
	return dst
}

func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return copyTree(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
