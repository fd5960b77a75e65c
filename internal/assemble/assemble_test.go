package assemble

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paninibuild/panini/internal/data"
	"github.com/paninibuild/panini/internal/engine"
	"github.com/paninibuild/panini/internal/locale"
	"github.com/paninibuild/panini/internal/pages"
)

func newEngine(t *testing.T) engine.Engine {
	t.Helper()
	eng, err := engine.New("gotemplate", engine.Options{})
	require.NoError(t, err)
	return eng
}

func TestPageData_FrontMatterBeatsGlobalData(t *testing.T) {
	page := &pages.Page{
		Name:        "about",
		RelPath:     "about.html",
		FrontMatter: map[string]any{"title": "From Front Matter"},
	}
	global := map[string]any{"title": "From Global"}

	merged, err := PageData(page, global, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "From Front Matter", merged["title"])
}

func TestPageData_DeepMergesFrontMatter(t *testing.T) {
	page := &pages.Page{
		Name:        "index",
		RelPath:     "index.html",
		FrontMatter: map[string]any{"site": map[string]any{"author": "Y"}},
	}
	global := map[string]any{"site": map[string]any{"title": "X"}}

	merged, err := PageData(page, global, nil, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"title": "X", "author": "Y"}, merged["site"])
}

func TestPageData_AttributesOverrideGlobalButNotFrontMatter(t *testing.T) {
	page := &pages.Page{
		Name:        "index",
		RelPath:     "index.html",
		Attributes:  map[string]any{"source": "attribute", "only": "attr"},
		FrontMatter: map[string]any{"source": "frontmatter"},
	}
	global := map[string]any{"source": "global"}

	merged, err := PageData(page, global, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "frontmatter", merged["source"])
	require.Equal(t, "attr", merged["only"])
}

func TestPageData_ConstantsBeatFrontMatter(t *testing.T) {
	page := &pages.Page{
		Name:        "index",
		RelPath:     "index.html",
		FrontMatter: map[string]any{"page": "spoofed"},
	}
	constants := map[string]any{"page": "index"}

	merged, err := PageData(page, nil, constants, nil)
	require.NoError(t, err)
	require.Equal(t, "index", merged["page"])
}

func TestPageData_HelpersApplyLast(t *testing.T) {
	page := &pages.Page{
		Name:        "index",
		RelPath:     "index.html",
		FrontMatter: map[string]any{"currentPage": "not a function"},
	}
	helpers := map[string]any{"currentPage": func(string) bool { return true }}

	merged, err := PageData(page, nil, nil, helpers)
	require.NoError(t, err)
	_, isFunc := merged["currentPage"].(func(string) bool)
	require.True(t, isFunc, "helper must win over a front-matter key of the same name")
}

func TestPageData_ScalarFalseInFrontMatterStillWins(t *testing.T) {
	page := &pages.Page{
		Name:        "index",
		RelPath:     "index.html",
		FrontMatter: map[string]any{"draft": false},
	}
	global := map[string]any{"draft": true}

	merged, err := PageData(page, global, nil, nil)
	require.NoError(t, err)
	require.Equal(t, false, merged["draft"])
}

func TestPageData_EmptyStringInFrontMatterStillWins(t *testing.T) {
	page := &pages.Page{
		Name:        "index",
		RelPath:     "index.html",
		FrontMatter: map[string]any{"title": ""},
	}
	global := map[string]any{"title": "Global Title"}

	merged, err := PageData(page, global, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "", merged["title"])
}

func TestConstants_IncludesPageRootLayoutLocale(t *testing.T) {
	page := &pages.Page{Name: "post", RelPath: "blog/post.html", Locale: "sv"}

	constants := Constants(page, "default", true)
	require.Equal(t, "post", constants["page"])
	require.Equal(t, "../", constants["root"])
	require.Equal(t, "default", constants["layout"])
	require.Equal(t, "sv", constants["locale"])
	require.NotContains(t, constants, ErrorKey)
}

func TestConstants_NoLayoutWhenEngineLacksSupport(t *testing.T) {
	page := &pages.Page{Name: "index", RelPath: "index.html"}

	constants := Constants(page, "", false)
	require.NotContains(t, constants, "layout")
}

func TestConstants_ParseErrorSetsMarker(t *testing.T) {
	page := &pages.Page{
		Name:     "bad",
		RelPath:  "bad.html",
		ParseErr: errors.New("yaml: line 2"),
	}

	constants := Constants(page, "default", true)
	require.Contains(t, constants, ErrorKey)
	require.Contains(t, constants[ErrorKey], "yaml")
}

func TestAssemble_EndToEnd(t *testing.T) {
	eng := newEngine(t)
	snap := data.NewSnapshot(
		map[string]any{"site": map[string]any{"title": "X"}},
		nil,
		locale.Table{"sv": {"greeting": "Hej"}},
	)
	page := &pages.Page{
		Name:        "index",
		RelPath:     "index.html",
		Locale:      "sv",
		FrontMatter: map[string]any{"site": map[string]any{"author": "Y"}},
	}

	merged, err := Assemble(page, snap, eng, Options{
		Layouts:  LayoutOptions{Default: "default"},
		Builtins: true,
	})
	require.NoError(t, err)

	require.Equal(t, map[string]any{"title": "X", "author": "Y"}, merged["site"])
	require.Equal(t, "default", merged["layout"])
	require.Equal(t, "index", merged["page"])

	translate, ok := merged["translate"].(func(string) string)
	require.True(t, ok)
	require.Equal(t, "Hej", translate("greeting"))
	require.Equal(t, "missing", translate("missing"))
}

func TestDeepMerge_DoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"site": map[string]any{"title": "X"}}
	overlay := map[string]any{"site": map[string]any{"author": "Y"}}

	_, err := DeepMerge(base, overlay)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"title": "X"}, base["site"])
	require.Equal(t, map[string]any{"author": "Y"}, overlay["site"])
}
