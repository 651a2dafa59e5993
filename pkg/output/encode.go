// Package output serializes resolved value trees.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-configform/pkg/ordered"
	"github.com/goliatone/go-configform/pkg/schema"
)

// Format selects the output encoding.
type Format = ordered.Format

const (
	FormatJSON = ordered.FormatJSON
	FormatYAML = ordered.FormatYAML
)

// DefaultFilename is the download name for generated JSON documents.
const DefaultFilename = "configuration.json"

// Filename returns the download name for format.
func Filename(format Format) string {
	if format == FormatYAML {
		return "configuration.yaml"
	}
	return DefaultFilename
}

// ContentType returns the MIME type for format.
func ContentType(format Format) string {
	if format == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// ParseFormat maps a user supplied name onto a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("output: unsupported format %q", name)
	}
}

// Encode renders tree in format. JSON uses two-space indentation without a
// trailing newline; both encodings keep schema property order.
func Encode(tree *ordered.Map, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return EncodeJSON(tree)
	case FormatYAML:
		return EncodeYAML(tree)
	default:
		return nil, fmt.Errorf("output: unsupported format %q", format)
	}
}

// EncodeJSON renders tree as indented JSON.
func EncodeJSON(tree *ordered.Map) ([]byte, error) {
	if tree == nil {
		tree = ordered.NewMap(0)
	}
	payload, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("output: encode json: %w", err)
	}
	return payload, nil
}

// EncodeYAML renders tree as a YAML document.
func EncodeYAML(tree *ordered.Map) ([]byte, error) {
	if tree == nil {
		tree = ordered.NewMap(0)
	}
	node, err := yamlNode(tree)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("output: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("output: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func yamlNode(value any) (*yaml.Node, error) {
	switch typed := value.(type) {
	case *ordered.Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		typed.Range(func(key string, v any) bool {
			var child *yaml.Node
			child, err = yamlNode(v)
			if err != nil {
				return false
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
			return true
		})
		if err != nil {
			return nil, err
		}
		if len(node.Content) == 0 {
			node.Style = yaml.FlowStyle
		}
		return node, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, entry := range typed {
			child, err := yamlNode(entry)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		if len(node.Content) == 0 {
			node.Style = yaml.FlowStyle
		}
		return node, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: typed}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(typed)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(typed, 10)}, nil
	case float64:
		if math.IsInf(typed, 0) || math.IsNaN(typed) {
			return nil, fmt.Errorf("output: unsupported number %v", typed)
		}
		if typed == math.Trunc(typed) && math.Abs(typed) < 1e21 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: schema.LiteralString(typed)}, nil
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: schema.LiteralString(typed)}, nil
	default:
		return nil, fmt.Errorf("output: unsupported value %T", value)
	}
}
