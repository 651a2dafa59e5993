package schema

import (
	"fmt"
)

// Parse decodes a loaded document into its ordered value tree.
func Parse(doc Document) (any, error) {
	value, err := doc.Parse()
	if err != nil {
		return nil, fmt.Errorf("schema: parse %s: %w", doc.Location(), err)
	}
	return value, nil
}

// Load parses and compiles a document in one step.
func Load(doc Document) (*ObjectNode, error) {
	value, err := Parse(doc)
	if err != nil {
		return nil, err
	}
	return Compile(value)
}

// Summary is the one-line description shown after a schema loads. fallback
// names the schema when it has no title, usually the file name.
func Summary(root *ObjectNode, fallback string) string {
	title := root.Title()
	if title == "" {
		title = fallback
	}
	return fmt.Sprintf("Loaded: %s (%d top-level fields)", title, len(root.Properties))
}
