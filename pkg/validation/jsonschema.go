package validation

import (
	"errors"
	"strings"

	"github.com/goliatone/go-configform/pkg/schema"
)

// SchemaIssue represents a validation error with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures validation outcomes for previews and the
// CLI validate command.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// ValidateSchema runs the root schema check on a decoded candidate and
// reports the outcome as issues.
func ValidateSchema(candidate any) SchemaValidationResult {
	if err := schema.Validate(candidate); err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{issueFromError(err)}}
	}
	return SchemaValidationResult{Valid: true}
}

// ValidateDocument parses and checks a schema document.
func ValidateDocument(doc schema.Document) SchemaValidationResult {
	candidate, err := schema.Parse(doc)
	if err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{issueFromError(err)}}
	}
	return ValidateSchema(candidate)
}

func issueFromError(err error) SchemaIssue {
	if err == nil {
		return SchemaIssue{Message: "unknown error"}
	}
	var validationErr *schema.ValidationError
	if errors.As(err, &validationErr) {
		issue := SchemaIssue{Message: validationErr.Error()}
		switch validationErr.Code {
		case schema.CodeWrongRootType:
			issue.Path = "/type"
		case schema.CodeMissingProperties:
			issue.Path = "/properties"
		}
		issue.Field = fieldPathFromPointer(issue.Path)
		return issue
	}

	msg := strings.TrimSpace(err.Error())
	msg = strings.TrimPrefix(msg, "schema: ")
	return SchemaIssue{Message: msg}
}

func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimSpace(pointer)
	if trimmed == "" {
		return ""
	}
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.ReplaceAll(part, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if segment == "" {
			continue
		}
		out = append(out, segment)
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, ".")
}

func pointerFromSegments(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	escaped := make([]string, len(segments))
	for idx, segment := range segments {
		segment = strings.ReplaceAll(segment, "~", "~0")
		escaped[idx] = strings.ReplaceAll(segment, "/", "~1")
	}
	return "/" + strings.Join(escaped, "/")
}
