package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paninibuild/panini/internal/engine"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadGlobalData_ParsesYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "site.yml"), "title: X\n")
	writeFile(t, filepath.Join(dir, "nav.json"), `[{"href": "/"}]`)

	global, err := LoadGlobalData(context.Background(), dir)
	require.NoError(t, err)

	require.Equal(t, map[string]any{"title": "X"}, global["site"])
	require.Equal(t, []any{map[string]any{"href": "/"}}, global["nav"])
}

func TestLoadGlobalData_RecursesAndStripsExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "nested", "deep", "team.yaml"), "size: 3\n")

	global, err := LoadGlobalData(context.Background(), dir)
	require.NoError(t, err)
	require.Contains(t, global, "team")
}

func TestLoadGlobalData_DuplicateBasename_LaterPathWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "site.yml"), "from: a\n")
	writeFile(t, filepath.Join(dir, "b", "site.yml"), "from: b\n")

	global, err := LoadGlobalData(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"from": "b"}, global["site"])
}

func TestLoadGlobalData_MissingFolder_EmptyMapping(t *testing.T) {
	global, err := LoadGlobalData(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.Empty(t, global)
}

func TestLoadGlobalData_MalformedFile_FailsSetup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.json"), "{not json")

	_, err := LoadGlobalData(context.Background(), dir)
	require.Error(t, err)
}

func TestLoadGlobalData_IgnoresUnrecognizedExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "not data")
	writeFile(t, filepath.Join(dir, "site.yml"), "title: X\n")

	global, err := LoadGlobalData(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, global, 1)
}

func TestLoadGlobalData_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "site.yml"), "title: X\nnested:\n  a: 1\n")

	first, err := LoadGlobalData(context.Background(), dir)
	require.NoError(t, err)
	second, err := LoadGlobalData(context.Background(), dir)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func writeCollection(t *testing.T, root, name, config, tpl string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if config != "" {
		writeFile(t, filepath.Join(dir, "collection.yml"), config)
	}
	if tpl != "" {
		writeFile(t, filepath.Join(dir, "template.html"), tpl)
	}
	if config == "" && tpl == "" {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
}

func TestLoadCollections_SkipsFoldersWithoutConfig(t *testing.T) {
	root := t.TempDir()
	writeCollection(t, root, "posts", "entries:\n  - title: one\n", "<li>{{.title}}</li>")
	writeCollection(t, root, "drafts", "", "<li>orphan template</li>")
	writeCollection(t, root, "empty", "", "")

	collections, err := LoadCollections(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	require.Contains(t, collections, "posts")
	require.Len(t, collections["posts"].Entries, 1)
}

func TestLoadCollections_MetadataBesideEntries(t *testing.T) {
	root := t.TempDir()
	writeCollection(t, root, "posts", "entries:\n  - title: one\noutput: posts/\n", "x")

	collections, err := LoadCollections(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, "posts/", collections["posts"].Metadata["output"])
}

func TestLoadCollections_MissingTemplate_Fails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "posts", "collection.yml"), "entries: []\n")

	_, err := LoadCollections(context.Background(), root)
	require.Error(t, err)
}

func TestLoadCollections_MultipleTemplates_FirstSortedWins(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "posts")
	writeFile(t, filepath.Join(dir, "collection.yml"), "entries: []\n")
	writeFile(t, filepath.Join(dir, "template.html"), "html template")
	writeFile(t, filepath.Join(dir, "template.txt"), "txt template")

	collections, err := LoadCollections(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, "html template", collections["posts"].Template)
}

func TestLoadCollections_MissingFolder_EmptyMapping(t *testing.T) {
	collections, err := LoadCollections(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.Empty(t, collections)
}

func TestBuildCollections_FailsOnBadTemplate(t *testing.T) {
	eng, err := engine.New("gotemplate", engine.Options{})
	require.NoError(t, err)

	good := map[string]Collection{
		"posts": {Name: "posts", Template: "<li>{{.title}}</li>"},
	}
	require.NoError(t, BuildCollections(good, eng))

	bad := map[string]Collection{
		"broken": {Name: "broken", Template: "{{if}}"},
	}
	require.Error(t, BuildCollections(bad, eng))
}

func TestNewSnapshot_VersionsAndDefaults(t *testing.T) {
	first := NewSnapshot(nil, nil, nil)
	second := NewSnapshot(nil, nil, nil)

	require.NotEmpty(t, first.Version)
	require.NotEqual(t, first.Version, second.Version)
	require.NotNil(t, first.Global)
	require.NotNil(t, first.Collections)
	require.NotNil(t, first.Locales)
}
