package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches schema documents anywhere below the root.
const DefaultPattern = "**/*.schema.json"

// Entry is a discovered schema document.
type Entry struct {
	// Name is the slash separated path relative to the discovery root.
	Name string
	// Title is the file name without the schema suffix.
	Title string
}

// Discover lists schema documents in fsys matching pattern, sorted by name.
// An empty pattern means DefaultPattern.
func Discover(fsys fs.FS, pattern string) ([]Entry, error) {
	if fsys == nil {
		return nil, errors.New("loader: discover fs is nil")
	}
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("loader: invalid pattern %q", pattern)
	}

	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("loader: discover %q: %w", pattern, err)
	}
	sort.Strings(matches)

	entries := make([]Entry, 0, len(matches))
	for _, match := range matches {
		entries = append(entries, Entry{Name: match, Title: titleFor(match)})
	}
	return entries, nil
}

// Match reports whether name would be discovered by pattern.
func Match(pattern, name string) bool {
	if pattern == "" {
		pattern = DefaultPattern
	}
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

func titleFor(name string) string {
	base := path.Base(name)
	for _, suffix := range []string{".schema.json", ".schema.yaml", ".schema.yml", ".json", ".yaml", ".yml"} {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}
