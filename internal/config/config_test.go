package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paninibuild/panini/internal/errors"
)

func writeProject(t *testing.T, configYAML string) (root, configPath string) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pages"), 0o755))

	configPath = filepath.Join(root, "panini.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o644))
	return root, configPath
}

func TestLoad_AppliesDefaults(t *testing.T) {
	root, path := writeProject(t, "")
	require.NoError(t, os.WriteFile(path, []byte("input: "+root+"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "gotemplate", cfg.Engine)
	require.Equal(t, "pages", cfg.Paths.Pages)
	require.Equal(t, "default", cfg.Layouts.Default)
	require.Equal(t, "./site", cfg.Output.Directory)
	require.True(t, cfg.BuiltinsEnabled())
}

func TestLoad_MissingFile_ReturnsConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestLoad_MissingInputFolder_IsFatal(t *testing.T) {
	_, path := writeProject(t, "input: /definitely/not/here\n")

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	root, path := writeProject(t, "")
	t.Setenv("PANINI_TEST_INPUT", root)
	require.NoError(t, os.WriteFile(path, []byte("input: ${PANINI_TEST_INPUT}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, root, cfg.Input)
}

func TestLoad_StreamSubjectRequiredWithURL(t *testing.T) {
	root, path := writeProject(t, "")
	yaml := "input: " + root + "\nstream:\n  url: nats://localhost:4222\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestBuiltinsEnabled_ExplicitFalse(t *testing.T) {
	root, path := writeProject(t, "")
	require.NoError(t, os.WriteFile(path, []byte("input: "+root+"\nbuiltins: false\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.False(t, cfg.BuiltinsEnabled())
}

func TestPathHelpers_JoinAgainstInput(t *testing.T) {
	cfg := &Config{Input: "/proj"}
	cfg.applyDefaults()

	require.Equal(t, filepath.Join("/proj", "pages"), cfg.PagesDir())
	require.Equal(t, filepath.Join("/proj", "data"), cfg.DataDir())
	require.Equal(t, filepath.Join("/proj", "locales"), cfg.LocalesDir())
	require.Equal(t, filepath.Join("/proj", "collections"), cfg.CollectionsDir())
	require.Equal(t, filepath.Join("/proj", "layouts"), cfg.LayoutsDir())
}
