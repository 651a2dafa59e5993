package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-configform/pkg/ordered"
	"github.com/goliatone/go-configform/pkg/schema"
)

// ErrConfigNotObject is returned when a configuration document is not a JSON
// object.
var ErrConfigNotObject = errors.New("validation: configuration must be a JSON object")

// RootSection names document-level problems in InvalidSections.
const RootSection = "root"

// ConfigCheckResult reports how an existing configuration document fares
// against a schema.
type ConfigCheckResult struct {
	Valid           bool          `json:"valid"`
	Issues          []SchemaIssue `json:"issues,omitempty"`
	InvalidSections []string      `json:"invalidSections,omitempty"`
}

// Summary returns the status line shown after a configuration loads.
func (r ConfigCheckResult) Summary(name string) string {
	if r.Valid {
		return "Loaded configuration: " + name
	}
	return fmt.Sprintf("Loaded configuration with %d validation issue(s): %s", len(r.Issues), name)
}

// CheckConfig validates config against the schema candidate and collects
// every issue. The schema is checked with the full keyword set understood by
// the validator, not only the subset used for form generation.
func CheckConfig(candidate any, config any) (ConfigCheckResult, error) {
	if err := schema.Validate(candidate); err != nil {
		return ConfigCheckResult{}, err
	}
	plainConfig, ok := ordered.ToPlain(config).(map[string]any)
	if !ok {
		return ConfigCheckResult{}, ErrConfigNotObject
	}

	compiled, err := openapiSchema(candidate)
	if err != nil {
		return ConfigCheckResult{}, err
	}

	result := ConfigCheckResult{Valid: true}
	visitErr := compiled.VisitJSON(plainConfig, openapi3.MultiErrors())
	if visitErr == nil {
		return result, nil
	}

	result.Valid = false
	result.Issues = issuesFromVisit(visitErr)
	result.InvalidSections = invalidSections(result.Issues)
	return result, nil
}

func openapiSchema(candidate any) (*openapi3.Schema, error) {
	payload, err := json.Marshal(ordered.FromPlain(candidate))
	if err != nil {
		return nil, fmt.Errorf("validation: encode schema: %w", err)
	}
	var compiled openapi3.Schema
	if err := json.Unmarshal(payload, &compiled); err != nil {
		return nil, fmt.Errorf("validation: schema not supported by config check: %w", err)
	}
	return &compiled, nil
}

func issuesFromVisit(err error) []SchemaIssue {
	var issues []SchemaIssue
	var collect func(error)
	collect = func(err error) {
		var multi openapi3.MultiError
		if errors.As(err, &multi) {
			for _, inner := range multi {
				collect(inner)
			}
			return
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(err, &schemaErr) {
			segments := schemaErr.JSONPointer()
			field := strings.Join(segments, ".")
			// A missing property is reported on the object that requires it.
			if schemaErr.SchemaField == "required" && len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
			message := strings.TrimSpace(schemaErr.Reason)
			if message == "" {
				message = strings.TrimSpace(schemaErr.Error())
			}
			issues = append(issues, SchemaIssue{
				Path:    pointerFromSegments(segments),
				Field:   field,
				Message: message,
			})
			return
		}
		issues = append(issues, SchemaIssue{Message: strings.TrimSpace(err.Error())})
	}
	collect(err)
	return issues
}

// invalidSections lists the distinct top-level property names that carry at
// least one issue, sorted. Issues without a path count as RootSection.
func invalidSections(issues []SchemaIssue) []string {
	seen := map[string]struct{}{}
	for _, issue := range issues {
		section := RootSection
		trimmed := strings.TrimLeft(issue.Path, "/")
		if trimmed != "" {
			first, _, _ := strings.Cut(trimmed, "/")
			if first != "" {
				section = strings.ReplaceAll(strings.ReplaceAll(first, "~1", "/"), "~0", "~")
			}
		}
		seen[section] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for section := range seen {
		out = append(out, section)
	}
	sort.Strings(out)
	return out
}
