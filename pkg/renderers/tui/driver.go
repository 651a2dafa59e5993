package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-configform/pkg/form"
	"github.com/goliatone/go-configform/pkg/resolve"
)

// ErrAborted is returned when the user interrupts a prompt with Ctrl+C.
var ErrAborted = errors.New("tui: aborted")

// InputConfig describes a free text prompt. Validator, when set, rejects
// text before the prompt returns.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// ConfirmConfig describes a yes/no prompt for a required boolean.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig describes a single choice prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Help         string
}

// PromptDriver runs prompts. Select returns the index of the chosen option.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	Info(ctx context.Context, msg string) error
}

// inputFor builds the text prompt for field. Its validator accepts exactly
// the text the resolver accepts for the leaf.
func inputFor(field form.Field) InputConfig {
	return InputConfig{
		Message:   field.Label,
		Default:   field.Value,
		Help:      displayHelp(field),
		Validator: coercible(field),
	}
}

func coercible(field form.Field) func(string) error {
	return func(text string) error {
		_, _, err := resolve.Coerce(field.Leaf, resolve.Text(text), field.Path, field.Required)
		return err
	}
}

func confirmFor(field form.Field) ConfirmConfig {
	return ConfirmConfig{
		Message: field.Label,
		Default: field.Value == "true",
		Help:    displayHelp(field),
	}
}

// choicesFor returns the options offered for field with the matching select
// prompt. The placeholder becomes SkipLabel for optional fields and is
// dropped for required ones.
func choicesFor(field form.Field) ([]form.Option, SelectConfig) {
	cfg := SelectConfig{Message: field.Label, Help: displayHelp(field)}
	var choices []form.Option
	for _, option := range field.Options {
		if option.Value == "" && option.Label == form.Placeholder {
			if field.Required {
				continue
			}
			option.Label = SkipLabel
		}
		if option.Selected {
			cfg.DefaultIndex = len(choices)
		}
		choices = append(choices, option)
		cfg.Options = append(cfg.Options, option.Label)
	}
	return choices, cfg
}

func displayHelp(field form.Field) string {
	if field.Description == "" {
		return field.Hint
	}
	return field.Description + " (" + field.Hint + ")"
}

// surveyDriver prompts on the process terminal.
type surveyDriver struct {
	out io.Writer
}

func newSurveyDriver(out io.Writer) PromptDriver {
	return &surveyDriver{out: out}
}

func (d *surveyDriver) ask(ctx context.Context, prompt survey.Prompt, response any, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, response, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var opts []survey.AskOpt
	if check := cfg.Validator; check != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			text, _ := ans.(string)
			return check(text)
		}))
	}
	var text string
	err := d.ask(ctx, &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &text, opts...)
	return text, err
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var answer bool
	err := d.ask(ctx, &survey.Confirm{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}, &answer)
	return answer, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	var label string
	if err := d.ask(ctx, prompt, &label); err != nil {
		return 0, err
	}
	return slices.Index(cfg.Options, label), nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}
