package engine

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
)

func init() {
	Register("gotemplate", NewGoTemplate)
}

// GoTemplate renders pages through html/template. It supports layouts,
// per-folder layout conventions, and i18n helpers, but ships no first-party
// helper library, so the full generic helper set is injected.
type GoTemplate struct {
	opts Options

	mu          sync.RWMutex
	layouts     map[string]string
	collections map[string]*template.Template
}

// NewGoTemplate constructs the html/template adapter.
func NewGoTemplate(opts Options) (Engine, error) {
	return &GoTemplate{
		opts:        opts,
		layouts:     map[string]string{},
		collections: map[string]*template.Template{},
	}, nil
}

func (g *GoTemplate) Name() string { return "gotemplate" }

func (g *GoTemplate) Supports(cap Capability) bool {
	switch cap {
	case CapLayouts, CapFolderLayouts, CapI18n:
		return true
	default:
		return false
	}
}

// Setup loads layout sources into memory. A missing layouts folder is not an
// error; pages then render without a wrapper unless they name a layout.
func (g *GoTemplate) Setup(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.layouts = map[string]string{}
	g.collections = map[string]*template.Template{}

	if g.opts.LayoutsDir == "" {
		return nil
	}
	entries, err := os.ReadDir(g.opts.LayoutsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read layouts folder: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(g.opts.LayoutsDir, entry.Name())
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read layout %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		g.layouts[name] = string(source)
	}
	return nil
}

// Render renders the page body, then wraps it in the named layout when the
// assembled data carries one. A named layout with no loaded source is a
// render error for that page.
func (g *GoTemplate) Render(templateSource string, data map[string]any) (string, error) {
	body, err := g.execute("page", templateSource, data)
	if err != nil {
		return "", err
	}

	layoutName, _ := data["layout"].(string)
	if layoutName == "" {
		return body, nil
	}

	g.mu.RLock()
	layoutSource, ok := g.layouts[layoutName]
	g.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("layout %q not found", layoutName)
	}

	wrapped := make(map[string]any, len(data)+1)
	for k, v := range data {
		wrapped[k] = v
	}
	wrapped["body"] = template.HTML(body)
	return g.execute("layout:"+layoutName, layoutSource, wrapped)
}

// RenderError implements ErrorReporter with a minimal HTML report.
func (g *GoTemplate) RenderError(pageName string, _ map[string]any, renderErr error) string {
	return fmt.Sprintf(
		"<!doctype html><title>Error rendering %s</title><h1>Error rendering %s</h1><pre>%s</pre>",
		html.EscapeString(pageName), html.EscapeString(pageName), html.EscapeString(renderErr.Error()),
	)
}

// IndexCollection pre-compiles a collection template so malformed collection
// templates fail the setup pass instead of every generated page.
func (g *GoTemplate) IndexCollection(name, templateSource string) error {
	tpl, err := template.New(name).Option("missingkey=zero").Parse(templateSource)
	if err != nil {
		return fmt.Errorf("compile collection template %s: %w", name, err)
	}

	g.mu.Lock()
	g.collections[name] = tpl
	g.mu.Unlock()
	return nil
}

func (g *GoTemplate) execute(name, source string, data map[string]any) (string, error) {
	tpl, err := template.New(name).Funcs(funcMapFrom(data)).Option("missingkey=zero").Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// funcMapFrom exposes helper functions from the assembled page data as
// template functions, so templates call {{currentPage "x"}} instead of
// {{call .currentPage "x"}}.
func funcMapFrom(data map[string]any) template.FuncMap {
	funcs := template.FuncMap{}
	for key, value := range data {
		if value == nil {
			continue
		}
		if reflect.TypeOf(value).Kind() == reflect.Func {
			funcs[key] = value
		}
	}
	return funcs
}
