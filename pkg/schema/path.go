package schema

import (
	"fmt"
	"strings"
)

// RootSentinel is the rendered form of the root path.
const RootSentinel = "$"

// Path locates a node inside the schema tree as the chain of property names
// from the root. Paths are values: Child never shares storage with its parent,
// so a Path can be kept across traversals.
type Path struct {
	segments []string
}

// Root returns the path of the root schema.
func Root() Path {
	return Path{}
}

// Child returns the path of the named property below p.
func (p Path) Child(name string) Path {
	segments := make([]string, len(p.segments), len(p.segments)+1)
	copy(segments, p.segments)
	return Path{segments: append(segments, name)}
}

// Segments returns a copy of the property names from the root.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Len reports the depth of the path; the root has length zero.
func (p Path) Len() int {
	return len(p.segments)
}

// IsRoot reports whether p is the root path.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Name returns the last segment, or the empty string at the root.
func (p Path) Name() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// String renders the dotted form, e.g. "$.settings.retries".
func (p Path) String() string {
	if len(p.segments) == 0 {
		return RootSentinel
	}
	return RootSentinel + "." + strings.Join(p.segments, ".")
}

// InputName renders the path without the root sentinel ("settings.retries"),
// the name used for HTML inputs.
func (p Path) InputName() string {
	return strings.Join(p.segments, ".")
}

// Label returns a display label for the node: its name, or "Root".
func (p Path) Label() string {
	if len(p.segments) == 0 {
		return "Root"
	}
	if name := p.Name(); name != "" {
		return name
	}
	return "Object"
}

// Equal reports whether both paths name the same node.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for idx := range p.segments {
		if p.segments[idx] != other.segments[idx] {
			return false
		}
	}
	return true
}

// ParsePath converts a dotted path back into a Path. The root sentinel is
// required. Property names that themselves contain dots cannot round-trip.
func ParsePath(raw string) (Path, error) {
	if raw == RootSentinel {
		return Root(), nil
	}
	if !strings.HasPrefix(raw, RootSentinel+".") {
		return Path{}, fmt.Errorf("schema: path %q must start with %q", raw, RootSentinel+".")
	}
	return Path{segments: strings.Split(raw[len(RootSentinel)+1:], ".")}, nil
}
