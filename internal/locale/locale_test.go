package locale

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLocale(t *testing.T, dir, name, yaml string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(yaml), 0o644))
}

func TestLoad_FilePerLocale(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.yml", "greeting: Hello\n")
	writeLocale(t, dir, "sv.yml", "greeting: Hej\n")

	table, err := Load(dir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"en", "sv"}, table.Locales())
	require.Equal(t, "Hej", table.Translate("sv", "greeting"))
	require.Equal(t, "Hello", table.Translate("en", "greeting"))
}

func TestLoad_FolderPerLocale_MergesFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "en"), 0o755))
	writeLocale(t, filepath.Join(dir, "en"), "nav.yml", "home: Home\n")
	writeLocale(t, filepath.Join(dir, "en"), "footer.yml", "contact: Contact\n")

	table, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "Home", table.Translate("en", "home"))
	require.Equal(t, "Contact", table.Translate("en", "contact"))
}

func TestLoad_MissingFolder_EmptyTable(t *testing.T) {
	table, err := Load(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.Empty(t, table)
}

func TestTranslate_MissingKeyReturnsKey(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.yml", "greeting: Hello\n")

	table, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, "missing.key", table.Translate("en", "missing.key"))
	require.Equal(t, "greeting", table.Translate("de", "greeting"))
}

func TestTranslate_EmptyTableIsIdentity(t *testing.T) {
	table := Table{}
	require.Equal(t, "anything", table.Translate("en", "anything"))
	require.Equal(t, "", table.Translate("sv", ""))
}

func TestNormalize_CanonicalizesTags(t *testing.T) {
	require.Equal(t, "en-US", Normalize("en_US"))
	require.Equal(t, "en-US", Normalize("en-us"))
	require.Equal(t, "sv", Normalize("sv"))
	require.Equal(t, "not a tag", Normalize("not a tag"))
}

func TestLoad_NonStringValuesAreStringified(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.yml", "count: 42\n")

	table, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "42", table.Translate("en", "count"))
}

func TestHas(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en_US.yml", "greeting: Hello\n")

	table, err := Load(dir)
	require.NoError(t, err)
	require.True(t, table.Has("en-US"))
	require.True(t, table.Has("en_us"))
	require.False(t, table.Has("sv"))
}
