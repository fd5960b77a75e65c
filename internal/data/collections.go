package data

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/paninibuild/panini/internal/engine"
)

// Collection is a named group of structured entries sharing one template,
// used to generate multiple pages from one definition.
type Collection struct {
	Name     string
	Entries  []any
	Template string
	Metadata map[string]any
}

// collectionConfig is the shape of a collection folder's configuration file.
type collectionConfig struct {
	Entries []any          `yaml:"entries"`
	Meta    map[string]any `yaml:",inline"`
}

var configNames = []string{"collection.yml", "collection.yaml", "collection.json"}

// LoadCollections reads each immediate child folder of the collections
// directory as one collection.
//
// Folders without a readable configuration file are skipped silently — a
// half-written collection must not fail the whole setup. Template files are
// matched by the glob `template.*`; when several match, the lexically first
// wins and a warning is logged.
func LoadCollections(ctx context.Context, collectionsDir string) (map[string]Collection, error) {
	collections := map[string]Collection{}

	entries, err := os.ReadDir(collectionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return collections, nil
		}
		return nil, fmt.Errorf("read collections folder: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		dir := filepath.Join(collectionsDir, name)

		cfg, ok := loadCollectionConfig(dir)
		if !ok {
			slog.Debug("skipping collection without valid config", slog.String("collection", name))
			continue
		}

		template, err := loadCollectionTemplate(dir, name)
		if err != nil {
			return nil, err
		}

		collections[name] = Collection{
			Name:     name,
			Entries:  cfg.Entries,
			Template: template,
			Metadata: cfg.Meta,
		}
	}
	return collections, nil
}

func loadCollectionConfig(dir string) (collectionConfig, bool) {
	for _, candidate := range configNames {
		raw, err := os.ReadFile(filepath.Join(dir, candidate))
		if err != nil {
			continue
		}
		var cfg collectionConfig
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return collectionConfig{}, false
		}
		return cfg, true
	}
	return collectionConfig{}, false
}

func loadCollectionTemplate(dir, name string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "template.*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("collection %s has no template.* file", name)
	}

	sort.Strings(matches)
	if len(matches) > 1 {
		slog.Warn("collection has multiple template files, using first",
			slog.String("collection", name),
			slog.String("template", filepath.Base(matches[0])))
	}

	raw, err := os.ReadFile(matches[0])
	if err != nil {
		return "", fmt.Errorf("read collection template: %w", err)
	}
	return string(raw), nil
}

// BuildCollections lets the engine pre-compile or index collection templates
// once all collections are loaded. Engines without that capability skip it.
func BuildCollections(collections map[string]Collection, eng engine.Engine) error {
	indexer, ok := eng.(engine.CollectionIndexer)
	if !ok {
		return nil
	}

	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := indexer.IndexCollection(name, collections[name].Template); err != nil {
			return err
		}
	}
	return nil
}

// CollectionNames returns the loaded collection names, sorted.
func CollectionNames(collections map[string]Collection) []string {
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
