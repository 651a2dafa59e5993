package form

import (
	"net/url"

	"github.com/goliatone/go-configform/pkg/resolve"
)

// ValueSource supplies the raw text entered for a field. ok is false when the
// source has no input for the field at all.
type ValueSource interface {
	Value(field Field) (text string, ok bool)
}

// URLValues reads submitted form values keyed by input name.
type URLValues url.Values

// Value implements ValueSource.
func (v URLValues) Value(field Field) (string, bool) {
	entries, ok := v[field.Name]
	if !ok || len(entries) == 0 {
		return "", false
	}
	return entries[0], true
}

// PathValues reads values keyed by dotted schema path ("$.a.b").
type PathValues map[string]string

// Value implements ValueSource.
func (v PathValues) Value(field Field) (string, bool) {
	text, ok := v[field.SchemaPath]
	return text, ok
}

// Collect gathers one raw value per leaf of plan. A source that has no input
// for a leaf fails with a MissingInput error for that path.
func Collect(plan Plan, src ValueSource) (resolve.Inputs, error) {
	in := make(resolve.Inputs, len(plan.fields))
	for _, field := range plan.fields {
		text, ok := src.Value(field)
		if !ok {
			return nil, resolve.NewError(resolve.CodeMissingInput, field.Path)
		}
		in.Set(field.Path, text)
	}
	return in, nil
}

// CollectPartial gathers whatever values src has, skipping missing leaves.
// Used by callers that merge several sources, such as a prefill file plus
// command-line overrides.
func CollectPartial(plan Plan, src ValueSource) resolve.Inputs {
	in := make(resolve.Inputs, len(plan.fields))
	for _, field := range plan.fields {
		if text, ok := src.Value(field); ok {
			in.Set(field.Path, text)
		}
	}
	return in
}

// UnknownPaths returns the keys that do not name a leaf of plan.
func UnknownPaths(plan Plan, keys []string) []string {
	var unknown []string
	for _, key := range keys {
		if _, ok := plan.Field(key); !ok {
			unknown = append(unknown, key)
		}
	}
	return unknown
}
