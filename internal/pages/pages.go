// Package pages discovers page templates under the pages folder and carries
// their front matter and per-page metadata through the build.
package pages

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/paninibuild/panini/internal/frontmatter"
	"github.com/paninibuild/panini/internal/locale"
)

// Page is one discovered template file. Pages are ephemeral: discovered
// fresh per build pass and never persisted between builds.
type Page struct {
	// Path is the absolute source path.
	Path string

	// RelPath is the path relative to the pages root, extension included.
	RelPath string

	// Name is the basename without extension.
	Name string

	// Body is the template source with front matter stripped.
	Body string

	// FrontMatter holds the parsed front-matter fields, never nil.
	FrontMatter map[string]any

	// Attributes carries file-level metadata attached by upstream loaders
	// (stream plugins, generators). Merged above global data, below front
	// matter.
	Attributes map[string]any

	// Locale is the page's assigned locale, empty when none applies.
	Locale string

	// ParseErr records a front-matter parse failure. The page still renders,
	// as an error report, so a build with N pages always emits N outputs.
	ParseErr error
}

// OutputPath returns the page's logical output path relative to the
// destination folder.
func (p *Page) OutputPath() string {
	ext := filepath.Ext(p.RelPath)
	return strings.TrimSuffix(p.RelPath, ext) + ".html"
}

// RootPrefix returns the relative path prefix from this page back to the
// pages root, used by templates to build root-relative links.
func (p *Page) RootPrefix() string {
	dir := filepath.Dir(filepath.ToSlash(p.RelPath))
	if dir == "." {
		return ""
	}
	depth := strings.Count(dir, "/") + 1
	return strings.Repeat("../", depth)
}

// Folder returns the page's containing folder name relative to the pages
// root, "" for top-level pages. Used by per-folder layout conventions.
func (p *Page) Folder() string {
	dir := filepath.Dir(filepath.ToSlash(p.RelPath))
	if dir == "." {
		return ""
	}
	return dir
}

// Discover walks the pages folder and returns all pages in lexical walk
// order, which is the stable discovery order the rest of the pipeline
// relies on.
//
// A page whose front matter fails to parse is kept with ParseErr set rather
// than aborting discovery; it surfaces as a per-page error report at render
// time. Locale assignment: an explicit `locale` front-matter key wins,
// otherwise the page's first path segment when it names a loaded locale.
func Discover(ctx context.Context, pagesDir string, locales locale.Table) ([]*Page, error) {
	var discovered []*Page

	err := filepath.Walk(pagesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != pagesDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(pagesDir, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}

		page, err := loadPage(path, relPath)
		if err != nil {
			return err
		}
		assignLocale(page, locales)
		discovered = append(discovered, page)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("pages discovered", slog.Int("count", len(discovered)))
	return discovered, nil
}

func loadPage(path, relPath string) (*Page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page %s: %w", relPath, err)
	}

	page := &Page{
		Path:        path,
		RelPath:     relPath,
		Name:        strings.TrimSuffix(filepath.Base(relPath), filepath.Ext(relPath)),
		FrontMatter: map[string]any{},
		Attributes:  map[string]any{},
	}

	fields, body, err := frontmatter.Parse(raw)
	if err != nil {
		page.Body = string(raw)
		page.ParseErr = err
		slog.Warn("front matter parse failed",
			slog.String("page", relPath), slog.Any("error", err))
		return page, nil
	}

	page.FrontMatter = fields
	page.Body = string(body)
	return page, nil
}

func assignLocale(page *Page, locales locale.Table) {
	if explicit, ok := page.FrontMatter["locale"].(string); ok && explicit != "" {
		page.Locale = locale.Normalize(explicit)
		return
	}

	parts := strings.Split(filepath.ToSlash(page.RelPath), "/")
	if len(parts) > 1 && locales.Has(parts[0]) {
		page.Locale = locale.Normalize(parts[0])
	}
}
