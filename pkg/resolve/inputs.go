package resolve

import (
	"github.com/goliatone/go-configform/pkg/schema"
)

// Input is the raw text supplied for one leaf, or its absence. Forms submit
// an empty string for untouched fields, so empty text is always absent.
type Input struct {
	text    string
	present bool
}

// Absent returns an input carrying no value.
func Absent() Input {
	return Input{}
}

// Text wraps raw user text. Empty text yields an absent input.
func Text(text string) Input {
	if text == "" {
		return Input{}
	}
	return Input{text: text, present: true}
}

// Value returns the raw text and whether the input is present.
func (i Input) Value() (string, bool) {
	return i.text, i.present
}

// IsAbsent reports whether no value was supplied.
func (i Input) IsAbsent() bool {
	return !i.present
}

// Inputs maps dotted leaf paths ("$.settings.retries") to raw text.
type Inputs map[string]string

// Lookup returns the input recorded for path. Missing entries are absent.
func (in Inputs) Lookup(path schema.Path) Input {
	if in == nil {
		return Absent()
	}
	return Text(in[path.String()])
}

// Set records raw text for path.
func (in Inputs) Set(path schema.Path, text string) {
	in[path.String()] = text
}

// Merge copies entries from other, overwriting existing paths.
func (in Inputs) Merge(other Inputs) {
	for key, value := range other {
		in[key] = value
	}
}
