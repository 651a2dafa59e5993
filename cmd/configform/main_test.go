package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-configform/pkg/form"
	"github.com/goliatone/go-configform/pkg/resolve"
)

var fixturePath = filepath.Join("..", "..", "pkg", "resolve", "testdata", "simple-schema.json")

type stubCollector struct {
	values  resolve.Inputs
	prefill resolve.Inputs
}

func (s *stubCollector) Collect(_ context.Context, _ form.Plan, prefill resolve.Inputs) (resolve.Inputs, error) {
	s.prefill = prefill
	return s.values, nil
}

type harness struct {
	app    *app
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(env map[string]string) *harness {
	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.app = &app{
		stdin:      strings.NewReader(""),
		stdout:     h.stdout,
		stderr:     h.stderr,
		isTerminal: func() bool { return false },
		lookupEnv: func(key string) (string, bool) {
			value, ok := env[key]
			return value, ok
		},
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) int {
	t.Helper()
	return h.app.run(context.Background(), args)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRun_Usage(t *testing.T) {
	h := newHarness(nil)
	if code := h.run(t); code != exitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
	if code := h.run(t, "bogus"); code != exitUsage {
		t.Fatalf("expected usage exit for unknown command, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), `unknown command "bogus"`) {
		t.Fatalf("unexpected stderr %q", h.stderr.String())
	}
	if code := h.run(t, "validate", "-nope"); code != exitUsage {
		t.Fatalf("expected usage exit for bad flag, got %d", code)
	}
}

func TestValidate(t *testing.T) {
	h := newHarness(nil)
	if code := h.run(t, "validate", "-schema", fixturePath); code != exitOK {
		t.Fatalf("validate exited %d: %s", code, h.stderr.String())
	}
	if got := h.stdout.String(); got != "Loaded: Local App Config (6 top-level fields)\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestValidate_SchemaFromEnvironment(t *testing.T) {
	h := newHarness(map[string]string{"CONFIGFORM_SCHEMA": fixturePath})
	if code := h.run(t, "validate"); code != exitOK {
		t.Fatalf("validate exited %d: %s", code, h.stderr.String())
	}
}

func TestValidate_Errors(t *testing.T) {
	h := newHarness(nil)
	if code := h.run(t, "validate"); code != exitFailure {
		t.Fatalf("expected failure without a schema, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "a schema is required") {
		t.Fatalf("unexpected stderr %q", h.stderr.String())
	}

	h = newHarness(nil)
	invalid := writeFile(t, "bad.json", `{"type":"array"}`)
	if code := h.run(t, "validate", "-schema", invalid); code != exitFailure {
		t.Fatalf("expected failure for non-object schema, got %d", code)
	}
	want := "Invalid schema: bad.json\n  /type: Root schema must have type \"object\".\n"
	if diff := cmp.Diff(want, h.stdout.String()); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}

	h = newHarness(nil)
	broken := writeFile(t, "broken.json", `{"type":`)
	if code := h.run(t, "validate", "-schema", broken); code != exitFailure {
		t.Fatalf("expected failure for malformed schema, got %d", code)
	}
	if !strings.HasPrefix(h.stdout.String(), "Invalid schema: broken.json\n  /: ") {
		t.Fatalf("expected a parse issue, got %q", h.stdout.String())
	}
}

func TestFields(t *testing.T) {
	h := newHarness(nil)
	if code := h.run(t, "fields", "-schema", fixturePath); code != exitOK {
		t.Fatalf("fields exited %d: %s", code, h.stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected header and 7 fields, got %q", lines)
	}
	if fields := strings.Fields(lines[2]); fields[0] != "$.port" || fields[1] != "number" {
		t.Fatalf("unexpected port line %q", lines[2])
	}
}

func TestGenerate_ValuesAndSetFlags(t *testing.T) {
	values := writeFile(t, "values.json", `{
		"$.name": "local-app",
		"$.port": "80",
		"$.mode": "dev"
	}`)
	out := filepath.Join(t.TempDir(), "configuration.json")

	h := newHarness(nil)
	code := h.run(t, "generate", "-schema", fixturePath, "-values", values, "-set", "$.port=8080", "-set", "$.settings.retries=3", "-output", out)
	if code != exitOK {
		t.Fatalf("generate exited %d: %s", code, h.stderr.String())
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := `{
  "name": "local-app",
  "port": 8080,
  "mode": "dev",
  "settings": {
    "retries": 3
  }
}`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(h.stderr.String(), "Configuration written to "+out) {
		t.Fatalf("unexpected stderr %q", h.stderr.String())
	}
}

func TestGenerate_PrefillToYAML(t *testing.T) {
	prefill := writeFile(t, "current.yaml", "name: svc\nport: 9000\nmode: prod\n")

	h := newHarness(nil)
	code := h.run(t, "generate", "-schema", fixturePath, "-prefill", prefill, "-set", "$.enabled=false", "-format", "yaml")
	if code != exitOK {
		t.Fatalf("generate exited %d: %s", code, h.stderr.String())
	}
	want := "name: svc\nport: 9000\nenabled: false\nmode: prod\n"
	if diff := cmp.Diff(want, h.stdout.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_ResolutionError(t *testing.T) {
	h := newHarness(nil)
	code := h.run(t, "generate", "-schema", fixturePath, "-set", "$.name=svc", "-set", "$.port=eighty", "-set", "$.mode=dev")
	if code != exitFailure {
		t.Fatalf("expected failure, got %d", code)
	}
	if got := strings.TrimSpace(h.stderr.String()); got != "Expected integer at $.port." {
		t.Fatalf("unexpected stderr %q", got)
	}
}

func TestGenerate_FlagErrors(t *testing.T) {
	cases := map[string][]string{
		"missing equals": {"-set", "$.name"},
		"relative path":  {"-set", "settings.region=eu"},
		"bad format":     {"-format", "toml"},
	}
	for name, extra := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(nil)
			args := append([]string{"generate", "-schema", fixturePath}, extra...)
			if code := h.run(t, args...); code == exitOK {
				t.Fatalf("expected failure, stdout %q", h.stdout.String())
			}
		})
	}
}

func TestGenerate_InteractiveRequiresTerminal(t *testing.T) {
	h := newHarness(nil)
	if code := h.run(t, "generate", "-schema", fixturePath, "-interactive"); code != exitFailure {
		t.Fatalf("expected failure, got %d", code)
	}
	if !strings.Contains(h.stderr.String(), "requires a terminal") {
		t.Fatalf("unexpected stderr %q", h.stderr.String())
	}
}

func TestGenerate_InteractiveUsesCollector(t *testing.T) {
	collector := &stubCollector{values: resolve.Inputs{"$.name": "tty", "$.port": "1", "$.mode": "dev"}}
	h := newHarness(nil)
	h.app.isTerminal = func() bool { return true }
	h.app.collector = collector

	code := h.run(t, "generate", "-schema", fixturePath, "-interactive", "-set", "$.name=seed")
	if code != exitOK {
		t.Fatalf("generate exited %d: %s", code, h.stderr.String())
	}
	if collector.prefill["$.name"] != "seed" {
		t.Fatalf("expected -set values to seed prompts, got %#v", collector.prefill)
	}
	if !strings.Contains(h.stdout.String(), `"name": "tty"`) {
		t.Fatalf("unexpected output %q", h.stdout.String())
	}
}

func TestCheck(t *testing.T) {
	valid := writeFile(t, "valid.json", `{"name":"svc","port":8080,"mode":"dev"}`)
	h := newHarness(nil)
	if code := h.run(t, "check", "-schema", fixturePath, "-config", valid); code != exitOK {
		t.Fatalf("check exited %d: %s", code, h.stderr.String())
	}
	if got := h.stdout.String(); got != "Loaded configuration: valid.json\n" {
		t.Fatalf("unexpected output %q", got)
	}

	invalid := writeFile(t, "invalid.json", `{"name":"svc","port":"x","mode":"dev","settings":{"retries":"many"}}`)
	h = newHarness(nil)
	if code := h.run(t, "check", "-schema", fixturePath, "-config", invalid); code != exitFailure {
		t.Fatalf("expected failure, got %d", code)
	}
	if h.stderr.Len() != 0 {
		t.Fatalf("issues must go to stdout, stderr %q", h.stderr.String())
	}
	out := h.stdout.String()
	if !strings.Contains(out, "validation issue(s): invalid.json") || !strings.Contains(out, "Invalid section(s):") {
		t.Fatalf("unexpected output %q", out)
	}

	h = newHarness(nil)
	if code := h.run(t, "check", "-schema", fixturePath); code != exitFailure {
		t.Fatalf("expected failure without -config, got %d", code)
	}
}

func TestList(t *testing.T) {
	dir := filepath.Join("..", "..", "internal", "loader", "testdata", "schemas")
	h := newHarness(nil)
	if code := h.run(t, "list", "-dir", dir); code != exitOK {
		t.Fatalf("list exited %d: %s", code, h.stderr.String())
	}
	want := "app.schema.json\tapp\nnested/worker.schema.json\tworker\n"
	if diff := cmp.Diff(want, h.stdout.String()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	h = newHarness(nil)
	if code := h.run(t, "list", "-dir", dir, "-pattern", "[bad"); code != exitFailure {
		t.Fatalf("expected failure for a bad pattern, got %d", code)
	}
}

func TestServe_CancelledContext(t *testing.T) {
	h := newHarness(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := h.app.run(ctx, []string{"serve", "-addr", "127.0.0.1:0"})
	if code != exitOK {
		t.Fatalf("serve exited %d: %s", code, h.stderr.String())
	}
}
