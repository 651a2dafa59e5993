package schema

import (
	"github.com/goliatone/go-configform/pkg/ordered"
)

// ValidationCode classifies root schema rejections.
type ValidationCode string

const (
	CodeNotAnObject       ValidationCode = "NotAnObject"
	CodeWrongRootType     ValidationCode = "WrongRootType"
	CodeMissingProperties ValidationCode = "MissingProperties"
)

// ValidationError reports why a candidate root schema was rejected.
type ValidationError struct {
	Code ValidationCode
}

func (e *ValidationError) Error() string {
	switch e.Code {
	case CodeNotAnObject:
		return "Schema must be a JSON object."
	case CodeWrongRootType:
		return `Root schema must have type "object".`
	case CodeMissingProperties:
		return "Root schema must contain a properties object."
	default:
		return "Invalid schema."
	}
}

// Is matches validation errors by code.
func (e *ValidationError) Is(target error) bool {
	other, ok := target.(*ValidationError)
	return ok && other.Code == e.Code
}

var (
	ErrNotAnObject       = &ValidationError{Code: CodeNotAnObject}
	ErrWrongRootType     = &ValidationError{Code: CodeWrongRootType}
	ErrMissingProperties = &ValidationError{Code: CodeMissingProperties}
)

// Validate accepts or rejects a decoded root schema. The check is shallow:
// nested property schemas are not inspected here.
func Validate(candidate any) error {
	root, ok := asObject(candidate)
	if !ok {
		return &ValidationError{Code: CodeNotAnObject}
	}
	if typ, _ := root.Get("type"); typ != "object" {
		return &ValidationError{Code: CodeWrongRootType}
	}
	props, _ := root.Get("properties")
	if _, ok := asObject(props); !ok {
		return &ValidationError{Code: CodeMissingProperties}
	}
	return nil
}

// asObject accepts ordered maps and plain maps; plain maps are converted with
// sorted keys.
func asObject(value any) (*ordered.Map, bool) {
	switch typed := value.(type) {
	case *ordered.Map:
		if typed == nil {
			return nil, false
		}
		return typed, true
	case map[string]any:
		if typed == nil {
			return nil, false
		}
		return ordered.FromPlain(typed).(*ordered.Map), true
	default:
		return nil, false
	}
}
