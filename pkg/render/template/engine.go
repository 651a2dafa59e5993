package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Extension is appended to template names that lack it.
const Extension = ".tmpl"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	files   fs.FS
	globals map[string]any
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithGlobals sets values visible to every template, next to the render data.
func WithGlobals(values map[string]any) Option {
	return func(cfg *config) {
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(values))
		}
		for key, value := range values {
			cfg.globals[key] = value
		}
	}
}

// Engine renders pongo2 templates from an fs.FS. Parsed templates are cached
// by name.
type Engine struct {
	mu    sync.Mutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
}

var _ TemplateRenderer = (*Engine)(nil)

// NewEngine builds an Engine. WithFS is required.
func NewEngine(options ...Option) (*Engine, error) {
	var cfg config
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.files == nil {
		return nil, errors.New("template: a template filesystem is required")
	}

	globals, err := toContext(cfg.globals)
	if err != nil {
		return nil, fmt.Errorf("template: globals: %w", err)
	}
	set := pongo2.NewSet("configform", pongo2.NewFSLoader(cfg.files))
	set.Globals = globals

	return &Engine{set: set, cache: make(map[string]*pongo2.Template)}, nil
}

// RenderTemplate renders the template stored at name and copies the result to
// every writer in out.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if !strings.HasSuffix(name, Extension) {
		name += Extension
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("template: %s: convert data: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("template: execute %s: %w", name, err)
	}
	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.cache[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("template: load %s: %w", name, err)
	}
	e.cache[name] = tmpl
	return tmpl, nil
}

// toContext turns view data into plain maps through a JSON round trip so
// templates address struct fields by their JSON names.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	ctx := pongo2.Context{}
	if err := json.Unmarshal(payload, &ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}
