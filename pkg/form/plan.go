// Package form derives an input layout from a compiled schema and collects
// raw values back from submitted forms.
package form

import (
	"strings"

	"github.com/goliatone/go-configform/pkg/resolve"
	"github.com/goliatone/go-configform/pkg/schema"
)

// Widget names the input control used for a leaf.
type Widget string

const (
	WidgetText    Widget = "text"
	WidgetNumber  Widget = "number"
	WidgetSelect  Widget = "select"
	WidgetBoolean Widget = "boolean"
)

// Placeholder is the label of the empty choice in select controls.
const Placeholder = "-- Select --"

// Option is one choice of a select control. The empty Value is the
// placeholder.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// Field describes the input rendered for one leaf.
type Field struct {
	Path schema.Path
	// Name is the HTML input name and id ("settings.retries").
	Name string
	// SchemaPath is the dotted path carried by the input ("$.settings.retries").
	SchemaPath  string
	Label       string
	Title       string
	Description string
	Required    bool
	Widget      Widget
	// InputType is the HTML type attribute for text and number widgets.
	InputType string
	Step      string
	Options   []Option
	Hint      string
	// Value is the current raw text, set by Plan.Rows.
	Value string

	Leaf *schema.LeafNode
}

// Section groups the fields of one object node.
type Section struct {
	Path        schema.Path
	Title       string
	Description string
	Depth       int
	Required    bool
	Fields      []Field
	Sections    []*Section
}

// RowKind tags entries of the flattened row stream.
type RowKind string

const (
	RowOpen  RowKind = "open"
	RowField RowKind = "field"
	RowClose RowKind = "close"
)

// Row is one entry of a depth-first walk over sections. Templates iterate
// rows instead of recursing.
type Row struct {
	Kind    RowKind
	Depth   int
	Section *Section
	Field   Field
}

// IsOpen, IsField and IsClose help templates branch on the row kind.
func (r Row) IsOpen() bool  { return r.Kind == RowOpen }
func (r Row) IsField() bool { return r.Kind == RowField }
func (r Row) IsClose() bool { return r.Kind == RowClose }

// Plan is the rendered layout of a schema.
type Plan struct {
	root    *schema.ObjectNode
	section *Section
	fields  []Field
	rows    []Row
}

// Build walks root in property order and produces its form plan.
func Build(root *schema.ObjectNode) Plan {
	plan := Plan{root: root}
	plan.section = plan.buildSection(root, schema.Root(), 0, false)
	plan.rows = flatten(plan.section, nil)
	return plan
}

func (p *Plan) buildSection(node *schema.ObjectNode, path schema.Path, depth int, required bool) *Section {
	section := &Section{
		Path:        path,
		Title:       node.Title(),
		Description: node.Description(),
		Depth:       depth,
		Required:    required,
	}
	if section.Title == "" {
		section.Title = path.Label()
	}

	for _, prop := range node.Properties {
		childPath := path.Child(prop.Name)
		isRequired := node.IsRequired(prop.Name)
		switch child := prop.Node.(type) {
		case *schema.ObjectNode:
			section.Sections = append(section.Sections, p.buildSection(child, childPath, depth+1, isRequired))
		case *schema.LeafNode:
			field := newField(child, childPath, isRequired)
			section.Fields = append(section.Fields, field)
			p.fields = append(p.fields, field)
		}
	}
	return section
}

func newField(leaf *schema.LeafNode, path schema.Path, required bool) Field {
	label := path.Name()
	if required {
		label += " *"
	}
	field := Field{
		Path:        path,
		Name:        path.InputName(),
		SchemaPath:  path.String(),
		Label:       label,
		Title:       leaf.Title(),
		Description: leaf.Description(),
		Required:    required,
		Hint:        hint(leaf, required),
		Leaf:        leaf,
	}

	switch {
	case leaf.HasEnum():
		field.Widget = WidgetSelect
		field.Options = make([]Option, 0, len(leaf.Enum)+1)
		field.Options = append(field.Options, Option{Label: Placeholder})
		for _, entry := range leaf.Enum {
			text := schema.LiteralString(entry)
			field.Options = append(field.Options, Option{Value: text, Label: text})
		}
	case leaf.Type == schema.LeafBoolean:
		field.Widget = WidgetBoolean
		field.Options = []Option{
			{Label: Placeholder},
			{Value: "true", Label: "true"},
			{Value: "false", Label: "false"},
		}
	case leaf.Type == schema.LeafInteger:
		field.Widget = WidgetNumber
		field.InputType = "number"
		field.Step = "1"
	case leaf.Type == schema.LeafNumber:
		field.Widget = WidgetNumber
		field.InputType = "number"
		field.Step = "any"
	default:
		field.Widget = WidgetText
		field.InputType = "text"
	}
	return field
}

func hint(leaf *schema.LeafNode, required bool) string {
	prefix := "Optional"
	if required {
		prefix = "Required"
	}
	if leaf.HasEnum() {
		parts := make([]string, len(leaf.Enum))
		for idx, entry := range leaf.Enum {
			if entry != nil {
				parts[idx] = schema.LiteralString(entry)
			}
		}
		return prefix + " | enum: " + strings.Join(parts, ", ")
	}
	return prefix + " | type: " + leaf.TypeName()
}

func flatten(section *Section, rows []Row) []Row {
	rows = append(rows, Row{Kind: RowOpen, Depth: section.Depth, Section: section})
	for _, field := range section.Fields {
		rows = append(rows, Row{Kind: RowField, Depth: section.Depth, Section: section, Field: field})
	}
	for _, nested := range section.Sections {
		rows = flatten(nested, rows)
	}
	return append(rows, Row{Kind: RowClose, Depth: section.Depth, Section: section})
}

// Schema returns the compiled schema the plan was built from.
func (p Plan) Schema() *schema.ObjectNode {
	return p.root
}

// Section returns the root section.
func (p Plan) Section() *Section {
	return p.section
}

// Fields returns every leaf field depth first.
func (p Plan) Fields() []Field {
	return append([]Field(nil), p.fields...)
}

// Field returns the field whose SchemaPath is schemaPath. Matching is on the
// rendered text, so property names containing dots resolve too.
func (p Plan) Field(schemaPath string) (Field, bool) {
	for _, field := range p.fields {
		if field.SchemaPath == schemaPath {
			return field, true
		}
	}
	return Field{}, false
}

// Rows returns the flattened row stream with current values applied. values
// may be nil.
func (p Plan) Rows(values resolve.Inputs) []Row {
	out := make([]Row, len(p.rows))
	for idx, row := range p.rows {
		if row.Kind == RowField {
			row.Field = row.Field.withValue(values)
		}
		out[idx] = row
	}
	return out
}

// Meta returns the load summary line, using fallback when the schema has no
// title.
func (p Plan) Meta(fallback string) string {
	return schema.Summary(p.root, fallback)
}

func (f Field) withValue(values resolve.Inputs) Field {
	text, _ := values.Lookup(f.Path).Value()
	f.Value = text
	if len(f.Options) == 0 {
		return f
	}
	options := make([]Option, len(f.Options))
	for idx, option := range f.Options {
		option.Selected = option.Value == text
		options[idx] = option
	}
	f.Options = options
	return f
}
