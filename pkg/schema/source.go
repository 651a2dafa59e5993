package schema

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Source identifies where a schema document originated so loaders can operate
// on files, fs.FS entries, or URLs without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile  SourceKind = "file"
	SourceKindFS    SourceKind = "fs"
	SourceKindURL   SourceKind = "url"
	SourceKindBytes SourceKind = "bytes"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string {
	return s.raw
}

func (s urlSource) Kind() SourceKind {
	return SourceKindURL
}

// SourceFromURL parses the supplied URL string and returns a Source. It panics
// if the URL is invalid to surface configuration mistakes early.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("schema: invalid URL %q: %v", raw, err))
	}
	return urlSource{raw: raw}
}

// uploadSource names in-memory payloads such as browser uploads.
type uploadSource struct {
	name string
}

func (s uploadSource) Location() string {
	return s.name
}

func (s uploadSource) Kind() SourceKind {
	return SourceKindBytes
}

// SourceFromUpload returns a Source for a payload that arrived in memory,
// named after the original file name.
func SourceFromUpload(name string) Source {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "upload.json"
	}
	return uploadSource{name: name}
}

// ParseSource maps a CLI-style argument onto a Source: http(s) URLs become URL
// sources, anything else a file path. Empty input yields nil.
func ParseSource(raw string) Source {
	location := strings.TrimSpace(raw)
	if location == "" {
		return nil
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if _, err := url.ParseRequestURI(location); err != nil {
			return nil
		}
		return urlSource{raw: location}
	}
	return SourceFromFile(location)
}

// formatFromLocation infers the document format from the file extension.
func formatFromLocation(location string) (Format, bool) {
	trimmed := location
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	switch strings.ToLower(path.Ext(trimmed)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	default:
		return "", false
	}
}
