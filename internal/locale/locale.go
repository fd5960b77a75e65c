// Package locale loads per-locale string tables and provides a total
// translate function for localized pages.
package locale

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Table maps a locale name to its key → translated-string mapping.
//
// Locale names are normalized to BCP 47 form when they parse as language
// tags ("en_US" and "en-us" both land under "en-US"); unparseable names are
// kept verbatim so projects with ad-hoc locale folders still work.
type Table map[string]map[string]string

// Load reads each immediate child of the locales folder as one locale.
//
// A file child ("sv.yml") becomes one locale keyed by its basename. A folder
// child becomes one locale whose files are merged in sorted order. A missing
// locales folder yields an empty table, not an error.
func Load(localesDir string) (Table, error) {
	table := Table{}

	entries, err := os.ReadDir(localesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return nil, fmt.Errorf("read locales folder: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		name := Normalize(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		path := filepath.Join(localesDir, entry.Name())

		msgs, err := loadStrings(path, entry.IsDir())
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", name, err)
		}
		table[name] = msgs
	}
	return table, nil
}

func loadStrings(path string, isDir bool) (map[string]string, error) {
	if !isDir {
		return parseStringsFile(path)
	}

	merged := map[string]string{}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		msgs, err := parseStringsFile(filepath.Join(path, entry.Name()))
		if err != nil {
			return nil, err
		}
		for k, v := range msgs {
			merged[k] = v
		}
	}
	return merged, nil
}

func parseStringsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	msgs := make(map[string]string, len(raw))
	for k, v := range raw {
		msgs[k] = fmt.Sprint(v)
	}
	return msgs, nil
}

// Normalize returns the BCP 47 canonical form of a locale name when it
// parses as a language tag, otherwise the name unchanged.
func Normalize(name string) string {
	if tag, err := language.Parse(name); err == nil {
		return tag.String()
	}
	return name
}

// Translate returns the mapped string for key in the given locale, or the
// key unchanged when the locale or key is absent. It never fails.
func (t Table) Translate(locale, key string) string {
	msgs, ok := t[Normalize(locale)]
	if !ok {
		return key
	}
	if value, ok := msgs[key]; ok {
		return value
	}
	return key
}

// Has reports whether the table carries the given locale.
func (t Table) Has(locale string) bool {
	_, ok := t[Normalize(locale)]
	return ok
}

// Locales returns the loaded locale names, sorted.
func (t Table) Locales() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
