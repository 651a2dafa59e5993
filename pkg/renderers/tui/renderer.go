package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-configform/pkg/form"
	"github.com/goliatone/go-configform/pkg/resolve"
)

// SkipLabel is the choice offered for optional select and boolean fields.
const SkipLabel = "(skip)"

// Renderer walks a form plan in the terminal and collects one raw text value
// per leaf. Values are not resolved here; callers pass the result to
// resolve.Resolve.
type Renderer struct {
	driver PromptDriver
	out    io.Writer
	logger *slog.Logger
	theme  Theme
}

// New constructs a TUI renderer with defaults (survey driver on stdout).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		out: os.Stdout,
		theme: Theme{
			SectionPrefix: "==",
			ErrorPrefix:   "!",
		},
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// Collect prompts for every field of plan in section order. prefill seeds
// prompt defaults and may be nil. The returned inputs hold one entry per
// leaf, keyed by dotted path; skipped optional fields map to "".
func (r *Renderer) Collect(ctx context.Context, plan form.Plan, prefill resolve.Inputs) (resolve.Inputs, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := make(resolve.Inputs, len(plan.Fields()))
	for _, row := range plan.Rows(prefill) {
		switch row.Kind {
		case form.RowOpen:
			if row.Depth == 0 {
				continue
			}
			if err := r.driver.Info(ctx, r.sectionHeader(row.Section)); err != nil {
				return nil, err
			}
		case form.RowField:
			text, err := r.promptField(ctx, row.Field)
			if err != nil {
				return nil, err
			}
			in[row.Field.SchemaPath] = text
			r.logger.DebugContext(ctx, "collected field", "path", row.Field.SchemaPath, "value", text)
		}
	}
	return in, nil
}

func (r *Renderer) sectionHeader(section *form.Section) string {
	header := strings.TrimSpace(r.theme.SectionPrefix + " " + section.Title)
	if section.Description != "" {
		header += "\n" + section.Description
	}
	return header
}

func (r *Renderer) promptField(ctx context.Context, field form.Field) (string, error) {
	switch field.Widget {
	case form.WidgetBoolean:
		if field.Required {
			return r.promptConfirm(ctx, field)
		}
		return r.promptChoice(ctx, field)
	case form.WidgetSelect:
		return r.promptChoice(ctx, field)
	default:
		return r.promptText(ctx, field)
	}
}

func (r *Renderer) promptText(ctx context.Context, field form.Field) (string, error) {
	cfg := inputFor(field)
	for {
		response, err := r.driver.Input(ctx, cfg)
		if err != nil {
			return "", err
		}
		if err := cfg.Validator(response); err != nil {
			if infoErr := r.driver.Info(ctx, r.invalid(err)); infoErr != nil {
				return "", infoErr
			}
			continue
		}
		return response, nil
	}
}

func (r *Renderer) promptConfirm(ctx context.Context, field form.Field) (string, error) {
	answer, err := r.driver.Confirm(ctx, confirmFor(field))
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(answer), nil
}

func (r *Renderer) promptChoice(ctx context.Context, field form.Field) (string, error) {
	choices, cfg := choicesFor(field)
	if len(choices) == 0 {
		return "", nil
	}
	for {
		idx, err := r.driver.Select(ctx, cfg)
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(choices) {
			if infoErr := r.driver.Info(ctx, r.invalid(fmt.Errorf("invalid selection for %s", field.SchemaPath))); infoErr != nil {
				return "", infoErr
			}
			continue
		}
		return choices[idx].Value, nil
	}
}

func (r *Renderer) invalid(err error) string {
	return strings.TrimSpace(r.theme.ErrorPrefix + " " + err.Error())
}
