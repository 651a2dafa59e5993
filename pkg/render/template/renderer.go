package template

import "io"

// TemplateRenderer is the seam renderers depend on. Engine is the pongo2
// implementation.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
