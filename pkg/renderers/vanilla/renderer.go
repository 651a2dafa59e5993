package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	rendertemplate "github.com/goliatone/go-configform/pkg/render/template"
)

// PageTemplate is the template RenderPage executes.
const PageTemplate = "templates/page.tmpl"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheet       string
}

// WithTemplatesFS replaces the embedded templates. The bundle must hold
// templates/page.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates/page.tmpl from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithTemplateRenderer injects a ready template renderer. Template bundle and
// stylesheet options are ignored when it is set.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet overrides the stylesheet URL, exposed to templates as the
// global "stylesheet".
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = href
	}
}

// Renderer renders the HTML form page.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

// New constructs the renderer and registers the "describe" filter that
// sanitizes schema descriptions.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), stylesheet: "/assets/" + StylesheetName}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := rendertemplate.RegisterFilter("describe", describeFilter); err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		if cfg.templateFS == nil {
			cfg.templateFS = TemplatesFS()
		}
		engine, err := rendertemplate.NewEngine(
			rendertemplate.WithFS(cfg.templateFS),
			rendertemplate.WithGlobals(map[string]any{"stylesheet": cfg.stylesheet}),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer}, nil
}

// ContentType is the media type of RenderPage output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// RenderPage renders the full form page.
func (r *Renderer) RenderPage(_ context.Context, page Page) ([]byte, error) {
	result, err := r.templates.RenderTemplate(PageTemplate, map[string]any{
		"page": buildPageView(page),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
