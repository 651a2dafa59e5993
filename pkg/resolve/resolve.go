// Package resolve turns raw form text into a typed value tree that follows a
// compiled schema.
package resolve

import (
	"context"
	"io"
	"log/slog"

	"github.com/goliatone/go-configform/pkg/ordered"
	"github.com/goliatone/go-configform/pkg/schema"
)

// Resolve walks node depth first in property order and builds the value tree
// for path. The first failure aborts the walk and no partial tree is
// returned.
func Resolve(node *schema.ObjectNode, path schema.Path, in Inputs) (*ordered.Map, error) {
	return resolveObject(node, path, in, nil)
}

type traceFunc func(path schema.Path, value any, included bool)

func resolveObject(node *schema.ObjectNode, path schema.Path, in Inputs, trace traceFunc) (*ordered.Map, error) {
	out := ordered.NewMap(len(node.Properties))
	for _, prop := range node.Properties {
		childPath := path.Child(prop.Name)
		required := node.IsRequired(prop.Name)

		switch child := prop.Node.(type) {
		case *schema.ObjectNode:
			nested, err := resolveObject(child, childPath, in, trace)
			if err != nil {
				return nil, err
			}
			included := nested.Len() > 0 || required
			if included {
				out.Set(prop.Name, nested)
			}
			if trace != nil {
				trace(childPath, nil, included)
			}
		case *schema.LeafNode:
			value, ok, err := Coerce(child, in.Lookup(childPath), childPath, required)
			if err != nil {
				return nil, err
			}
			if ok {
				out.Set(prop.Name, value)
			}
			if trace != nil {
				trace(childPath, value, ok)
			}
		}
	}
	return out, nil
}

// Resolver resolves inputs against compiled schemas. It holds no mutable
// state and is safe for concurrent use.
type Resolver struct {
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger traces per-field decisions at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New constructs a Resolver.
func New(options ...Option) *Resolver {
	r := &Resolver{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve builds the value tree for root from in.
func (r *Resolver) Resolve(ctx context.Context, root *schema.ObjectNode, in Inputs) (*ordered.Map, error) {
	var trace traceFunc
	if r.logger.Enabled(ctx, slog.LevelDebug) {
		trace = func(path schema.Path, value any, included bool) {
			r.logger.DebugContext(ctx, "resolved field",
				slog.String("path", path.String()),
				slog.Bool("included", included),
				slog.Any("value", value),
			)
		}
	}

	tree, err := resolveObject(root, schema.Root(), in, trace)
	if err != nil {
		r.logger.DebugContext(ctx, "resolution failed", slog.String("error", err.Error()))
		return nil, err
	}
	return tree, nil
}
