// Package configform turns a JSON Schema subset into a form and resolves the
// submitted text back into a typed configuration document.
package configform

import (
	"context"

	internalLoader "github.com/goliatone/go-configform/internal/loader"
	"github.com/goliatone/go-configform/pkg/orchestrator"
	"github.com/goliatone/go-configform/pkg/output"
	"github.com/goliatone/go-configform/pkg/resolve"
	"github.com/goliatone/go-configform/pkg/schema"
)

// Request aliases orchestrator.Request for callers of the top-level package.
type Request = orchestrator.Request

// Result aliases orchestrator.Result.
type Result = orchestrator.Result

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	cfg := schema.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Load reads, validates and compiles the schema at source.
func Load(ctx context.Context, source schema.Source, options ...orchestrator.Option) (*schema.ObjectNode, schema.Document, error) {
	loaded, err := orchestrator.New(options...).Load(ctx, orchestrator.Request{Source: source})
	if err != nil {
		return nil, schema.Document{}, err
	}
	return loaded.Root, loaded.Document, nil
}

// Generate loads the schema at source, resolves inputs against it and returns
// the indented JSON document. It is the simplest entry point for callers that
// already hold raw text keyed by dotted path.
func Generate(ctx context.Context, source schema.Source, inputs resolve.Inputs, options ...orchestrator.Option) ([]byte, error) {
	result, err := orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Source: source,
		Inputs: inputs,
		Format: output.FormatJSON,
	})
	if err != nil {
		return nil, err
	}
	return result.Output, nil
}
