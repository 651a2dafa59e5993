package schema

import (
	"github.com/goliatone/go-configform/pkg/ordered"
)

// Compile validates candidate as a root schema and converts it into the typed
// node tree. Nested nodes are converted leniently: anything that is not an
// object with type "object" becomes a leaf, and unknown or missing types fall
// back to string.
func Compile(candidate any) (*ObjectNode, error) {
	if err := Validate(candidate); err != nil {
		return nil, err
	}
	root, _ := asObject(candidate)
	return compileObject(root), nil
}

// MustCompile panics if candidate is not a valid root schema.
func MustCompile(candidate any) *ObjectNode {
	node, err := Compile(candidate)
	if err != nil {
		panic(err)
	}
	return node
}

func compileObject(raw *ordered.Map) *ObjectNode {
	node := &ObjectNode{
		title:       stringAttr(raw, "title"),
		description: stringAttr(raw, "description"),
		Required:    stringList(raw, "required"),
	}

	propsValue, _ := raw.Get("properties")
	props, ok := asObject(propsValue)
	if !ok {
		return node
	}
	node.Properties = make([]Property, 0, props.Len())
	props.Range(func(name string, value any) bool {
		node.Properties = append(node.Properties, Property{Name: name, Node: compileNode(value)})
		return true
	})
	return node
}

func compileNode(value any) Node {
	raw, ok := asObject(value)
	if !ok {
		return &LeafNode{Type: LeafString}
	}
	declared, _ := raw.Get("type")
	typeName, _ := declared.(string)
	if typeName == "object" {
		return compileObject(raw)
	}

	leaf := &LeafNode{
		Type:        leafTypeFor(typeName),
		Declared:    typeName,
		title:       stringAttr(raw, "title"),
		description: stringAttr(raw, "description"),
	}
	if enumValue, ok := raw.Get("enum"); ok {
		if entries, ok := enumValue.([]any); ok {
			leaf.Enum = append(make([]any, 0, len(entries)), entries...)
		}
	}
	return leaf
}

func leafTypeFor(name string) LeafType {
	switch name {
	case "integer":
		return LeafInteger
	case "number":
		return LeafNumber
	case "boolean":
		return LeafBoolean
	default:
		return LeafString
	}
}

func stringAttr(raw *ordered.Map, key string) string {
	value, _ := raw.Get(key)
	text, _ := value.(string)
	return text
}

func stringList(raw *ordered.Map, key string) []string {
	value, _ := raw.Get(key)
	entries, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if name, ok := entry.(string); ok {
			out = append(out, name)
		}
	}
	return out
}
