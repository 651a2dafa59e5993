package vanilla

import (
	"github.com/goliatone/go-configform/pkg/form"
	"github.com/goliatone/go-configform/pkg/resolve"
	"github.com/goliatone/go-configform/pkg/validation"
)

// SchemaLink lists a discovered schema in the page sidebar.
type SchemaLink struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Page is everything the form page shows. Plan may be nil when no schema is
// loaded.
type Page struct {
	Title   string
	Meta    string
	Status  string
	Error   string
	Schemas []SchemaLink

	Plan   *form.Plan
	Values resolve.Inputs

	Output       string
	OutputFormat string

	Issues          []validation.SchemaIssue
	InvalidSections []string

	LiveReload bool
	ReloadPath string
}

type pageView struct {
	Title           string                   `json:"title"`
	Meta            string                   `json:"meta"`
	Status          string                   `json:"status"`
	Error           string                   `json:"error"`
	Schemas         []SchemaLink             `json:"schemas"`
	HasSchema       bool                     `json:"has_schema"`
	Rows            []rowView                `json:"rows"`
	Output          string                   `json:"output"`
	OutputFormat    string                   `json:"output_format"`
	Issues          []validation.SchemaIssue `json:"issues"`
	InvalidSections []string                 `json:"invalid_sections"`
	LiveReload      bool                     `json:"live_reload"`
	ReloadPath      string                   `json:"reload_path"`
}

type rowView struct {
	Kind        string     `json:"kind"`
	Depth       int        `json:"depth"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Path        string     `json:"path,omitempty"`
	Field       *fieldView `json:"field,omitempty"`
}

type fieldView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	SchemaPath  string       `json:"schema_path"`
	Label       string       `json:"label"`
	Description string       `json:"description,omitempty"`
	Widget      string       `json:"widget"`
	InputType   string       `json:"input_type,omitempty"`
	Step        string       `json:"step,omitempty"`
	Required    bool         `json:"required"`
	Options     []optionView `json:"options,omitempty"`
	Hint        string       `json:"hint"`
	Value       string       `json:"value"`
}

type optionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

func buildPageView(page Page) pageView {
	view := pageView{
		Title:           page.Title,
		Meta:            page.Meta,
		Status:          page.Status,
		Error:           page.Error,
		Schemas:         page.Schemas,
		Output:          page.Output,
		OutputFormat:    page.OutputFormat,
		Issues:          page.Issues,
		InvalidSections: page.InvalidSections,
		LiveReload:      page.LiveReload,
		ReloadPath:      page.ReloadPath,
	}
	if view.Title == "" {
		view.Title = "Schema to Configuration"
	}
	if view.Meta == "" {
		view.Meta = "No schema loaded."
	}
	if view.OutputFormat == "" {
		view.OutputFormat = "json"
	}
	if page.Plan == nil {
		return view
	}

	view.HasSchema = true
	for _, row := range page.Plan.Rows(page.Values) {
		view.Rows = append(view.Rows, buildRowView(row))
	}
	return view
}

func buildRowView(row form.Row) rowView {
	out := rowView{Kind: string(row.Kind), Depth: row.Depth}
	switch row.Kind {
	case form.RowOpen, form.RowClose:
		out.Title = row.Section.Title
		out.Description = row.Section.Description
		out.Path = row.Section.Path.String()
	case form.RowField:
		field := row.Field
		fv := &fieldView{
			ID:          controlID(field.Name),
			Name:        field.Name,
			SchemaPath:  field.SchemaPath,
			Label:       field.Label,
			Description: field.Description,
			Widget:      string(field.Widget),
			InputType:   field.InputType,
			Step:        field.Step,
			Required:    field.Required,
			Hint:        field.Hint,
			Value:       field.Value,
		}
		for _, option := range field.Options {
			fv.Options = append(fv.Options, optionView{Value: option.Value, Label: option.Label, Selected: option.Selected})
		}
		out.Path = field.SchemaPath
		out.Field = fv
	}
	return out
}

func controlID(name string) string {
	if name == "" {
		return ""
	}
	return "cf-" + name
}
