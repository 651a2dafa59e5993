package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	internalLoader "github.com/goliatone/go-configform/internal/loader"
	"github.com/goliatone/go-configform/pkg/form"
	"github.com/goliatone/go-configform/pkg/ordered"
	"github.com/goliatone/go-configform/pkg/output"
	"github.com/goliatone/go-configform/pkg/resolve"
	"github.com/goliatone/go-configform/pkg/schema"
)

// Collector gathers raw inputs for a plan interactively. The terminal
// renderer implements it.
type Collector interface {
	Collect(ctx context.Context, plan form.Plan, prefill resolve.Inputs) (resolve.Inputs, error)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom schema loader.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithCollector registers the collector used by interactive requests.
func WithCollector(collector Collector) Option {
	return func(o *Orchestrator) {
		o.collector = collector
	}
}

// WithLogger sets the logger handed to the resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator coordinates the full pipeline from schema document to encoded
// configuration.
type Orchestrator struct {
	loader    schema.Loader
	collector Collector
	logger    *slog.Logger
	resolver  *resolve.Resolver
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.loader == nil {
		o.loader = internalLoader.New(schema.NewLoaderOptions())
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	o.resolver = resolve.New(resolve.WithLogger(o.logger))
	return o
}

// Request describes one generation run.
type Request struct {
	// Source identifies where the schema lives. Optional when Document is
	// supplied.
	Source schema.Source

	// Document allows callers to bypass the loader.
	Document *schema.Document

	// Prefill is an existing configuration whose leaf values seed the inputs.
	Prefill any

	// Inputs holds raw text keyed by dotted path. Entries override Prefill.
	Inputs resolve.Inputs

	// Interactive asks the configured Collector for the final inputs.
	Interactive bool

	// Format selects the output encoding. Empty means JSON.
	Format output.Format
}

// Loaded is a compiled schema with its form plan.
type Loaded struct {
	Document schema.Document
	Raw      any
	Root     *schema.ObjectNode
	Plan     form.Plan
}

// Meta returns the load summary line for the schema.
func (l Loaded) Meta() string {
	return l.Plan.Meta(filepath.Base(l.Document.Location()))
}

// Result is the outcome of Generate.
type Result struct {
	Loaded
	Inputs resolve.Inputs
	Tree   *ordered.Map
	Output []byte
}

// Load resolves the request document, validates and compiles it.
func (o *Orchestrator) Load(ctx context.Context, req Request) (Loaded, error) {
	if ctx == nil {
		return Loaded{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Loaded{}, err
	}

	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return Loaded{}, err
	}
	raw, err := doc.Parse()
	if err != nil {
		return Loaded{}, err
	}
	root, err := schema.Compile(raw)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{Document: doc, Raw: raw, Root: root, Plan: form.Build(root)}, nil
}

// Generate executes the load → collect → resolve → encode sequence.
// Resolution errors are returned unwrapped so callers can show their text.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Result, error) {
	loaded, err := o.Load(ctx, req)
	if err != nil {
		return Result{}, err
	}

	in := resolve.Inputs{}
	if req.Prefill != nil {
		in.Merge(form.Prefill(loaded.Root, req.Prefill))
	}
	in.Merge(req.Inputs)

	if req.Interactive {
		if o.collector == nil {
			return Result{}, errors.New("orchestrator: interactive request without a collector")
		}
		in, err = o.collector.Collect(ctx, loaded.Plan, in)
		if err != nil {
			return Result{}, err
		}
	}

	tree, err := o.resolver.Resolve(ctx, loaded.Root, in)
	if err != nil {
		return Result{}, err
	}

	encoded, err := output.Encode(tree, req.Format)
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: encode output: %w", err)
	}

	return Result{Loaded: loaded, Inputs: in, Tree: tree, Output: encoded}, nil
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (schema.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return schema.Document{}, errors.New("orchestrator: source or document is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}
