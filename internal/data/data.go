// Package data aggregates global data files and collection definitions into
// the immutable snapshot a build pass renders from.
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/paninibuild/panini/internal/errors"
)

var dataExtensions = map[string]bool{
	".json": true,
	".yml":  true,
	".yaml": true,
}

// LoadGlobalData scans the data folder recursively for structured data files
// and keys each parsed tree by file basename with the extension stripped.
//
// Walk order is lexical, so on duplicate basenames the later-sorted path
// wins deterministically. A missing data folder yields an empty mapping.
func LoadGlobalData(ctx context.Context, dataDir string) (map[string]any, error) {
	global := map[string]any{}

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return global, nil
	}

	err := filepath.Walk(dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		ext := filepath.Ext(info.Name())
		if !dataExtensions[ext] {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		content, err := parseDataFile(path)
		if err != nil {
			return errors.DataFileInvalid(path, err)
		}

		name := strings.TrimSuffix(info.Name(), ext)
		if _, exists := global[name]; exists {
			slog.Debug("duplicate data basename, later file wins",
				slog.String("name", name), slog.String("path", path))
		}
		global[name] = content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return global, nil
}

func parseDataFile(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var content any
	if filepath.Ext(path) == ".json" {
		if err := json.Unmarshal(raw, &content); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return content, nil
	}
	if err := yaml.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return content, nil
}
