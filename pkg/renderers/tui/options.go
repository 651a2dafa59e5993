package tui

import (
	"io"
	"log/slog"
)

// Theme captures optional prefixes the renderer applies when printing
// section headers and validation messages.
type Theme struct {
	SectionPrefix string
	ErrorPrefix   string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput sets the writer used by the default driver for informational
// messages. Defaults to os.Stdout.
func WithOutput(out io.Writer) Option {
	return func(r *Renderer) {
		if out != nil {
			r.out = out
		}
	}
}

// WithLogger attaches a structured logger for per-field debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
