package form

import (
	"github.com/goliatone/go-configform/pkg/ordered"
	"github.com/goliatone/go-configform/pkg/resolve"
	"github.com/goliatone/go-configform/pkg/schema"
)

// Prefill flattens an existing configuration document into raw inputs for
// root so a saved configuration can be edited. Values that cannot be shown
// in a leaf input (objects, arrays, nulls outside an enum) are skipped.
func Prefill(root *schema.ObjectNode, config any) resolve.Inputs {
	in := resolve.Inputs{}
	object, ok := toMap(config)
	if !ok {
		return in
	}
	prefillObject(root, schema.Root(), object, in)
	return in
}

func prefillObject(node *schema.ObjectNode, path schema.Path, values *ordered.Map, in resolve.Inputs) {
	for _, prop := range node.Properties {
		value, present := values.Get(prop.Name)
		if !present {
			continue
		}
		childPath := path.Child(prop.Name)
		switch child := prop.Node.(type) {
		case *schema.ObjectNode:
			if nested, ok := toMap(value); ok {
				prefillObject(child, childPath, nested, in)
			}
		case *schema.LeafNode:
			if text, ok := leafText(child, value); ok {
				in.Set(childPath, text)
			}
		}
	}
}

func leafText(leaf *schema.LeafNode, value any) (string, bool) {
	switch value.(type) {
	case *ordered.Map, map[string]any, []any:
		return "", false
	case nil:
		if !leaf.HasEnum() {
			return "", false
		}
	}
	return schema.LiteralString(value), true
}

func toMap(value any) (*ordered.Map, bool) {
	switch typed := value.(type) {
	case *ordered.Map:
		return typed, typed != nil
	case map[string]any:
		return ordered.FromPlain(typed).(*ordered.Map), true
	default:
		return nil, false
	}
}
