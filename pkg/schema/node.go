package schema

// NodeKind distinguishes the two node variants of a compiled schema.
type NodeKind int

const (
	KindObject NodeKind = iota + 1
	KindLeaf
)

func (k NodeKind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Node is a compiled schema node. It is implemented by *ObjectNode and
// *LeafNode only; callers switch on the concrete type.
type Node interface {
	Kind() NodeKind
	Title() string
	Description() string
	node()
}

// LeafType is the scalar type a leaf resolves to.
type LeafType int

const (
	LeafString LeafType = iota
	LeafInteger
	LeafNumber
	LeafBoolean
)

func (t LeafType) String() string {
	switch t {
	case LeafInteger:
		return "integer"
	case LeafNumber:
		return "number"
	case LeafBoolean:
		return "boolean"
	default:
		return "string"
	}
}

// Property pairs a property name with its compiled schema.
type Property struct {
	Name string
	Node Node
}

// ObjectNode is a schema node with type "object".
type ObjectNode struct {
	// Properties keep the declaration order of the source document.
	Properties []Property
	// Required lists required property names as declared. Names that are not
	// properties are kept and ignored.
	Required []string

	title       string
	description string
}

func (*ObjectNode) node() {}

// Kind implements Node.
func (*ObjectNode) Kind() NodeKind { return KindObject }

// Title returns the schema title, if any.
func (o *ObjectNode) Title() string { return o.title }

// Description returns the schema description, if any.
func (o *ObjectNode) Description() string { return o.description }

// IsRequired reports whether name appears in the required list.
func (o *ObjectNode) IsRequired(name string) bool {
	for _, candidate := range o.Required {
		if candidate == name {
			return true
		}
	}
	return false
}

// Property returns the named child.
func (o *ObjectNode) Property(name string) (Node, bool) {
	for _, prop := range o.Properties {
		if prop.Name == name {
			return prop.Node, true
		}
	}
	return nil, false
}

// LeafNode is a scalar schema node.
type LeafNode struct {
	Type LeafType
	// Declared is the literal "type" text of the source, empty when absent or
	// not a string.
	Declared string
	// Enum holds the allowed literals. Nil means no enum was declared; a
	// non-nil empty slice matches nothing.
	Enum []any

	title       string
	description string
}

func (*LeafNode) node() {}

// Kind implements Node.
func (*LeafNode) Kind() NodeKind { return KindLeaf }

// Title returns the schema title, if any.
func (l *LeafNode) Title() string { return l.title }

// Description returns the schema description, if any.
func (l *LeafNode) Description() string { return l.description }

// HasEnum reports whether the leaf declared an enum list.
func (l *LeafNode) HasEnum() bool { return l.Enum != nil }

// TypeName returns the name shown to users: the declared type, or "string".
func (l *LeafNode) TypeName() string {
	if l.Declared != "" {
		return l.Declared
	}
	return LeafString.String()
}

// NewObject builds an ObjectNode, mainly for tests and programmatic schemas.
func NewObject(title string, required []string, props ...Property) *ObjectNode {
	return &ObjectNode{
		Properties: props,
		Required:   required,
		title:      title,
	}
}

// NewLeaf builds a LeafNode of the given type.
func NewLeaf(typ LeafType, enum ...any) *LeafNode {
	leaf := &LeafNode{Type: typ, Declared: typ.String()}
	if enum != nil {
		leaf.Enum = enum
	}
	return leaf
}
