package resolve

import (
	"fmt"

	"github.com/goliatone/go-configform/pkg/schema"
)

// Code classifies resolution failures.
type Code string

const (
	CodeRequiredFieldMissing Code = "RequiredFieldMissing"
	CodeInvalidEnumValue     Code = "InvalidEnumValue"
	CodeExpectedInteger      Code = "ExpectedInteger"
	CodeExpectedNumber       Code = "ExpectedNumber"
	CodeExpectedBoolean      Code = "ExpectedBoolean"
	// CodeMissingInput is raised by form collectors that fail to supply a
	// leaf, never by coercion.
	CodeMissingInput Code = "MissingInput"
)

// Error is a terminal resolution failure at a leaf path.
type Error struct {
	Code Code
	Path schema.Path
}

// NewError builds a resolution error for path.
func NewError(code Code, path schema.Path) *Error {
	return &Error{Code: code, Path: path}
}

func (e *Error) Error() string {
	path := e.Path.String()
	switch e.Code {
	case CodeRequiredFieldMissing:
		return "Required field is missing: " + path
	case CodeInvalidEnumValue:
		return fmt.Sprintf("Invalid enum value for %s.", path)
	case CodeExpectedInteger:
		return fmt.Sprintf("Expected integer at %s.", path)
	case CodeExpectedNumber:
		return fmt.Sprintf("Expected number at %s.", path)
	case CodeExpectedBoolean:
		return fmt.Sprintf("Expected boolean at %s.", path)
	case CodeMissingInput:
		return fmt.Sprintf("Missing input for %s.", path)
	default:
		return fmt.Sprintf("Resolution failed at %s.", path)
	}
}

// Collaborator reports whether the failure comes from the form layer rather
// than from the user's input.
func (e *Error) Collaborator() bool {
	return e.Code == CodeMissingInput
}

// Is matches any resolution error with the same code, ignoring the path.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Code == e.Code
}

var (
	ErrRequiredFieldMissing = &Error{Code: CodeRequiredFieldMissing}
	ErrInvalidEnumValue     = &Error{Code: CodeInvalidEnumValue}
	ErrExpectedInteger      = &Error{Code: CodeExpectedInteger}
	ErrExpectedNumber       = &Error{Code: CodeExpectedNumber}
	ErrExpectedBoolean      = &Error{Code: CodeExpectedBoolean}
	ErrMissingInput         = &Error{Code: CodeMissingInput}
)
