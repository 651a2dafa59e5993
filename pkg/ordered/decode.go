package ordered

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Decode parses data using the given format. Objects decode to *Map, arrays to
// []any, numbers to float64.
func Decode(data []byte, format Format) (any, error) {
	switch format {
	case FormatYAML:
		return DecodeYAML(data)
	case FormatJSON, "":
		return DecodeJSON(data)
	default:
		return nil, fmt.Errorf("ordered: unsupported format %q", format)
	}
}

// DecodeJSON parses a single JSON value, keeping object key order.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("ordered: decode json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, errors.New("ordered: decode json: unexpected data after top-level value")
		}
		return nil, fmt.Errorf("ordered: decode json: %w", err)
	}
	return value, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch typed := tok.(type) {
	case json.Delim:
		switch typed {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", typed)
		}
	case json.Number:
		return parseNumber(typed.String())
	case string, bool, nil:
		return typed, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeJSONObject(dec *json.Decoder) (*Map, error) {
	out := NewMap(4)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		value, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeJSONArray(dec *json.Decoder) ([]any, error) {
	out := make([]any, 0)
	for dec.More() {
		value, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseNumber(text string) (float64, error) {
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(value, 0) {
		return 0, fmt.Errorf("number %s out of range", text)
	}
	return value, nil
}

// DecodeYAML parses the first YAML document in data, keeping mapping order.
// JSON documents are valid YAML, so this also accepts most JSON input.
func DecodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ordered: decode yaml: %w", err)
	}
	if doc.Kind == 0 {
		return nil, errors.New("ordered: decode yaml: document is empty")
	}
	value, err := fromYAMLNode(&doc)
	if err != nil {
		return nil, fmt.Errorf("ordered: decode yaml: %w", err)
	}
	return value, nil
}

func fromYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("line %d: dangling alias", node.Line)
		}
		return fromYAMLNode(node.Alias)
	case yaml.MappingNode:
		out := NewMap(len(node.Content) / 2)
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			keyNode := node.Content[idx]
			if keyNode.Kind == yaml.AliasNode && keyNode.Alias != nil {
				keyNode = keyNode.Alias
			}
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			value, err := fromYAMLNode(node.Content[idx+1])
			if err != nil {
				return nil, err
			}
			out.Set(keyNode.Value, value)
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := fromYAMLNode(child)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	case yaml.ScalarNode:
		return fromYAMLScalar(node)
	default:
		return nil, fmt.Errorf("line %d: unsupported node kind %d", node.Line, node.Kind)
	}
}

func fromYAMLScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int", "!!float":
		var raw any
		if err := node.Decode(&raw); err != nil {
			return nil, err
		}
		switch number := raw.(type) {
		case int:
			return float64(number), nil
		case int64:
			return float64(number), nil
		case uint64:
			return float64(number), nil
		case float64:
			if math.IsInf(number, 0) || math.IsNaN(number) {
				return nil, fmt.Errorf("line %d: non-finite number %q", node.Line, node.Value)
			}
			return number, nil
		default:
			return nil, fmt.Errorf("line %d: unsupported number %q", node.Line, node.Value)
		}
	default:
		return node.Value, nil
	}
}
