// Package orchestrator runs a schema through the whole pipeline in one call:
// fetch the document, compile it, seed inputs from an existing configuration,
// optionally ask a Collector for the values, then resolve and encode. The CLI
// and the root package facade are thin layers over it.
package orchestrator
