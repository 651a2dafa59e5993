package template

import (
	"errors"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Filter transforms the value piped into it.
type Filter func(input any) (any, error)

var filtersMu sync.Mutex

// RegisterFilter makes fn available to templates as name. pongo2 filters are
// process wide, so registering a name again replaces the earlier filter.
func RegisterFilter(name string, fn Filter) error {
	if name == "" || fn == nil {
		return errors.New("template: filter name and function are required")
	}
	wrapped := func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		out, err := fn(in.Interface())
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(out), nil
	}

	filtersMu.Lock()
	defer filtersMu.Unlock()
	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, wrapped)
	}
	return pongo2.RegisterFilter(name, wrapped)
}
