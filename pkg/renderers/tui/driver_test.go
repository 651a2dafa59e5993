package tui

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-configform/pkg/form"
	"github.com/goliatone/go-configform/pkg/resolve"
	"github.com/goliatone/go-configform/pkg/testsupport"
)

func planField(t *testing.T, plan form.Plan, schemaPath string) form.Field {
	t.Helper()
	field, ok := plan.Field(schemaPath)
	if !ok {
		t.Fatalf("no field %s", schemaPath)
	}
	return field
}

func TestChoicesFor(t *testing.T) {
	plan := form.Build(testsupport.MustCompileString(t, `{
		"type": "object",
		"required": ["mode"],
		"properties": {
			"mode": {"type": "string", "enum": ["dev", "prod"]},
			"level": {"type": "string", "enum": ["debug", "info"]},
			"verbose": {"type": "boolean"}
		}
	}`))

	choices, cfg := choicesFor(planField(t, plan, "$.mode"))
	if diff := cmp.Diff([]string{"dev", "prod"}, cfg.Options); diff != "" {
		t.Fatalf("required options mismatch (-want +got):\n%s", diff)
	}
	if len(choices) != 2 || choices[1].Value != "prod" {
		t.Fatalf("unexpected choices %+v", choices)
	}

	_, cfg = choicesFor(planField(t, plan, "$.level"))
	if diff := cmp.Diff([]string{SkipLabel, "debug", "info"}, cfg.Options); diff != "" {
		t.Fatalf("optional options mismatch (-want +got):\n%s", diff)
	}

	var verbose form.Field
	for _, row := range plan.Rows(resolve.Inputs{"$.verbose": "false"}) {
		if row.Kind == form.RowField && row.Field.SchemaPath == "$.verbose" {
			verbose = row.Field
		}
	}
	choices, cfg = choicesFor(verbose)
	if cfg.Options[0] != SkipLabel || choices[cfg.DefaultIndex].Value != "false" {
		t.Fatalf("expected prefilled default, got %+v (default %d)", cfg.Options, cfg.DefaultIndex)
	}
}

func TestInputFor_ValidatesLikeResolver(t *testing.T) {
	plan := form.Build(testsupport.MustCompileString(t, `{
		"type": "object",
		"required": ["port"],
		"properties": {"port": {"type": "integer", "description": "Listen port"}}
	}`))
	cfg := inputFor(planField(t, plan, "$.port"))

	if cfg.Message != "port *" {
		t.Fatalf("unexpected message %q", cfg.Message)
	}
	if err := cfg.Validator("8080"); err != nil {
		t.Fatalf("expected integer to pass: %v", err)
	}
	if err := cfg.Validator("8.5"); err == nil || err.Error() != "Expected integer at $.port." {
		t.Fatalf("expected coercion error, got %v", err)
	}
	if err := cfg.Validator(""); err == nil {
		t.Fatalf("expected required field to reject empty text")
	}
}

func TestSurveyDriver_HonoursCancelledContext(t *testing.T) {
	d := newSurveyDriver(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Input(ctx, InputConfig{}); err != context.Canceled {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if _, err := d.Select(ctx, SelectConfig{}); err != context.Canceled {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if err := d.Info(ctx, "x"); err != context.Canceled {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
