package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/goliatone/go-configform"
	"github.com/goliatone/go-configform/internal/config"
	"github.com/goliatone/go-configform/internal/loader"
	"github.com/goliatone/go-configform/internal/server"
	"github.com/goliatone/go-configform/pkg/orchestrator"
	"github.com/goliatone/go-configform/pkg/output"
	"github.com/goliatone/go-configform/pkg/renderers/tui"
	"github.com/goliatone/go-configform/pkg/renderers/vanilla"
	"github.com/goliatone/go-configform/pkg/resolve"
	"github.com/goliatone/go-configform/pkg/schema"
	"github.com/goliatone/go-configform/pkg/validation"
)

var (
	errUsage  = errors.New("usage")
	errSilent = errors.New("reported")
)

func isUsage(err error) bool  { return errors.Is(err, errUsage) }
func isSilent(err error) bool { return errors.Is(err, errSilent) }

// common holds the flags every schema command accepts.
type common struct {
	cfg     config.Config
	schema  string
	envFile string
}

func (a *app) newFlagSet(name string, c *common) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&c.schema, "schema", "", "schema path or URL (default $"+config.EnvSchema+")")
	fs.StringVar(&c.envFile, "env-file", "", "read settings from this .env file")
	return fs
}

// parse parses args and loads the configuration, applying flag overrides.
func (a *app) parse(fs *flag.FlagSet, c *common, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errUsage
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	cfg, err := config.Load(config.WithEnvFile(c.envFile), config.WithLookup(a.lookupEnv))
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.schema == "" {
		c.schema = cfg.Schema
	}
	return nil
}

func (c *common) logger(a *app) *slog.Logger {
	return c.cfg.Logger(a.stderr)
}

func (c *common) loader() schema.Loader {
	if c.cfg.AllowHTTP {
		return configform.NewLoader(schema.WithHTTPFallback(c.cfg.HTTPTimeout))
	}
	return configform.NewLoader()
}

func (c *common) source() (schema.Source, error) {
	src := schema.ParseSource(c.schema)
	if src == nil {
		return nil, fmt.Errorf("a schema is required (-schema or $%s)", config.EnvSchema)
	}
	return src, nil
}

func (a *app) orchestrator(c *common) *orchestrator.Orchestrator {
	return orchestrator.New(
		orchestrator.WithLoader(c.loader()),
		orchestrator.WithLogger(c.logger(a)),
		orchestrator.WithCollector(a.collector),
	)
}

func (a *app) load(ctx context.Context, c *common) (orchestrator.Loaded, error) {
	src, err := c.source()
	if err != nil {
		return orchestrator.Loaded{}, err
	}
	return a.orchestrator(c).Load(ctx, orchestrator.Request{Source: src})
}

func (a *app) cmdValidate(ctx context.Context, args []string) error {
	var c common
	fs := a.newFlagSet("validate", &c)
	if err := a.parse(fs, &c, args); err != nil {
		return err
	}
	src, err := c.source()
	if err != nil {
		return err
	}
	doc, err := c.loader().Load(ctx, src)
	if err != nil {
		return err
	}
	if result := validation.ValidateDocument(doc); !result.Valid {
		fmt.Fprintf(a.stdout, "Invalid schema: %s\n", filepath.Base(doc.Location()))
		a.printIssues(result.Issues)
		return errSilent
	}

	loaded, err := a.orchestrator(&c).Load(ctx, orchestrator.Request{Document: &doc})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, loaded.Meta())
	return nil
}

func (a *app) printIssues(issues []validation.SchemaIssue) {
	for _, issue := range issues {
		location := issue.Path
		if location == "" {
			location = "/"
		}
		fmt.Fprintf(a.stdout, "  %s: %s\n", location, issue.Message)
	}
}

func (a *app) cmdFields(ctx context.Context, args []string) error {
	var c common
	fs := a.newFlagSet("fields", &c)
	if err := a.parse(fs, &c, args); err != nil {
		return err
	}
	loaded, err := a.load(ctx, &c)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tWIDGET\tHINT")
	for _, field := range loaded.Plan.Fields() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", field.SchemaPath, field.Widget, field.Hint)
	}
	return tw.Flush()
}

// setFlags collects repeated -set $.path=value flags.
type setFlags resolve.Inputs

func (s setFlags) String() string {
	return fmt.Sprintf("%d value(s)", len(s))
}

func (s setFlags) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	if !ok {
		return fmt.Errorf("expected $.path=value, got %q", raw)
	}
	if _, err := schema.ParsePath(key); err != nil {
		return err
	}
	s[key] = value
	return nil
}

func (a *app) cmdGenerate(ctx context.Context, args []string) error {
	var c common
	fs := a.newFlagSet("generate", &c)
	sets := setFlags{}
	fs.Var(sets, "set", "raw value for a field as $.path=value (repeatable)")
	valuesFile := fs.String("values", "", "JSON object of raw values keyed by $.path")
	prefillFile := fs.String("prefill", "", "existing configuration used to seed values")
	interactive := fs.Bool("interactive", false, "prompt for every field in the terminal")
	formatName := fs.String("format", "json", "output format: json or yaml")
	outputFile := fs.String("output", "", "output file (stdout if empty)")
	if err := a.parse(fs, &c, args); err != nil {
		return err
	}

	format, err := output.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	src, err := c.source()
	if err != nil {
		return err
	}

	req := orchestrator.Request{Source: src, Format: format, Inputs: resolve.Inputs{}}
	if *valuesFile != "" {
		values, err := readValues(*valuesFile)
		if err != nil {
			return err
		}
		req.Inputs.Merge(values)
	}
	req.Inputs.Merge(resolve.Inputs(sets))
	if *prefillFile != "" {
		if req.Prefill, err = readDocument(*prefillFile); err != nil {
			return err
		}
	}

	if *interactive {
		if !a.isTerminal() {
			return errors.New("-interactive requires a terminal on stdin")
		}
		req.Interactive = true
		if a.collector == nil {
			collector, err := tui.New(tui.WithOutput(a.stdout), tui.WithLogger(c.logger(a)))
			if err != nil {
				return err
			}
			a.collector = collector
		}
	}

	result, err := a.orchestrator(&c).Generate(ctx, req)
	if err != nil {
		return err
	}

	if *outputFile == "" {
		body := result.Output
		if len(body) == 0 || body[len(body)-1] != '\n' {
			body = append(body, '\n')
		}
		_, err = a.stdout.Write(body)
		return err
	}
	if err := os.WriteFile(*outputFile, result.Output, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(a.stderr, "Configuration written to %s\n", *outputFile)
	return nil
}

func (a *app) cmdCheck(ctx context.Context, args []string) error {
	var c common
	fs := a.newFlagSet("check", &c)
	configFile := fs.String("config", "", "configuration file to check")
	if err := a.parse(fs, &c, args); err != nil {
		return err
	}
	if *configFile == "" {
		return errors.New("-config is required")
	}

	loaded, err := a.load(ctx, &c)
	if err != nil {
		return err
	}
	doc, err := readDocument(*configFile)
	if err != nil {
		return err
	}
	result, err := validation.CheckConfig(loaded.Raw, doc)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, result.Summary(filepath.Base(*configFile)))
	if result.Valid {
		return nil
	}
	a.printIssues(result.Issues)
	fmt.Fprintf(a.stdout, "Invalid section(s): %s\n", strings.Join(result.InvalidSections, ", "))
	return errSilent
}

func (a *app) cmdList(_ context.Context, args []string) error {
	var c common
	fs := a.newFlagSet("list", &c)
	dir := fs.String("dir", "", "directory to search (default $"+config.EnvSchemaDir+")")
	pattern := fs.String("pattern", "", "glob pattern (default $"+config.EnvSchemaGlob+")")
	if err := a.parse(fs, &c, args); err != nil {
		return err
	}
	if *dir == "" {
		*dir = c.cfg.SchemaDir
	}
	if *pattern == "" {
		*pattern = c.cfg.SchemaGlob
	}
	if *dir == "" {
		return fmt.Errorf("a directory is required (-dir or $%s)", config.EnvSchemaDir)
	}

	entries, err := loader.Discover(os.DirFS(*dir), *pattern)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fmt.Fprintf(a.stdout, "%s\t%s\n", entry.Name, entry.Title)
	}
	return nil
}

func (a *app) cmdServe(ctx context.Context, args []string) error {
	var c common
	fs := a.newFlagSet("serve", &c)
	addr := fs.String("addr", "", "listen address (default $"+config.EnvAddr+")")
	dir := fs.String("dir", "", "directory of selectable schemas (default $"+config.EnvSchemaDir+")")
	pattern := fs.String("pattern", "", "glob pattern for -dir (default $"+config.EnvSchemaGlob+")")
	watch := fs.Bool("watch", false, "reload schemas when files change (default $"+config.EnvWatch+")")
	templates := fs.String("templates", "", "directory holding templates/page.tmpl (default $"+config.EnvTemplates+")")
	if err := a.parse(fs, &c, args); err != nil {
		return err
	}

	opts := []server.Option{
		server.WithAddr(firstNonEmpty(*addr, c.cfg.Addr)),
		server.WithLogger(c.logger(a)),
		server.WithLoader(c.loader()),
		server.WithSchemaDir(firstNonEmpty(*dir, c.cfg.SchemaDir), firstNonEmpty(*pattern, c.cfg.SchemaGlob)),
		server.WithWatch(*watch || c.cfg.Watch),
		server.WithOutputName(c.cfg.OutputName),
	}
	if dir := firstNonEmpty(*templates, c.cfg.TemplatesDir); dir != "" {
		renderer, err := vanilla.New(vanilla.WithTemplatesDir(dir))
		if err != nil {
			return err
		}
		opts = append(opts, server.WithRenderer(renderer))
	}
	srv, err := server.New(opts...)
	if err != nil {
		return err
	}
	if c.schema != "" {
		if err := srv.LoadSchema(ctx, c.schema); err != nil {
			return err
		}
	}
	return srv.Run(ctx)
}

func readValues(path string) (resolve.Inputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var values resolve.Inputs
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("read values %s: %w", path, err)
	}
	return values, nil
}

// readDocument decodes a JSON or YAML document keeping key order.
func readDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := schema.NewDocument(schema.SourceFromFile(path), data)
	if err != nil {
		return nil, err
	}
	return doc.Parse()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
