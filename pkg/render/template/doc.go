// Package template defines the template rendering contract used by the HTML
// renderer and a pongo2-backed implementation of it.
package template
