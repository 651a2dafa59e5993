package schema

import (
	"bytes"
	"errors"

	"github.com/goliatone/go-configform/pkg/ordered"
)

// Format identifies the encoding of a schema document.
type Format = ordered.Format

const (
	FormatJSON = ordered.FormatJSON
	FormatYAML = ordered.FormatYAML
)

// Document wraps the raw schema payload and its origin.
type Document struct {
	source Source
	raw    []byte
	format Format
}

// NewDocument constructs a Document wrapper while validating the inputs. The
// format is taken from the source extension, falling back to sniffing the
// payload.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}

	format, ok := formatFromLocation(src.Location())
	if !ok {
		format = sniffFormat(raw)
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone, format: format}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Format reports whether the payload is JSON or YAML.
func (d Document) Format() Format {
	if d.format == "" {
		return FormatJSON
	}
	return d.format
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Parse decodes the document into ordered values. The result is the candidate
// handed to Validate and Compile.
func (d Document) Parse() (any, error) {
	if len(d.raw) == 0 {
		return nil, errors.New("schema: document is empty")
	}
	return ordered.Decode(d.raw, d.Format())
}

func sniffFormat(raw []byte) Format {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}
