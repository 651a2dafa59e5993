package server

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/goliatone/go-configform/pkg/form"
	"github.com/goliatone/go-configform/pkg/schema"
)

// Snapshot is one compiled schema together with its form plan. Snapshots are
// never mutated after construction; a reload replaces the whole value.
type Snapshot struct {
	// Name identifies the schema in links and status lines.
	Name string
	// Location is the file path or URL the schema was read from. Empty for
	// uploads.
	Location string
	Raw      any
	Root     *schema.ObjectNode
	Plan     form.Plan
	Meta     string
	LoadedAt time.Time
}

// NewSnapshot validates and compiles doc.
func NewSnapshot(name string, doc schema.Document) (Snapshot, error) {
	raw, err := doc.Parse()
	if err != nil {
		return Snapshot{}, err
	}
	root, err := schema.Compile(raw)
	if err != nil {
		return Snapshot{}, err
	}
	if name == "" {
		name = path.Base(doc.Location())
	}

	location := ""
	if src := doc.Source(); src != nil && src.Kind() != schema.SourceKindBytes {
		location = src.Location()
	}

	plan := form.Build(root)
	return Snapshot{
		Name:     name,
		Location: location,
		Raw:      raw,
		Root:     root,
		Plan:     plan,
		Meta:     plan.Meta(name),
		LoadedAt: time.Now(),
	}, nil
}

// loadSnapshot reads src through loader and compiles it.
func loadSnapshot(ctx context.Context, loader schema.Loader, name string, src schema.Source) (Snapshot, error) {
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := NewSnapshot(name, doc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", doc.Location(), err)
	}
	return snap, nil
}

// Store holds the active schema. Readers get a copy of the current snapshot
// and keep using it for the rest of their request.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
	version uint64
}

// Current returns the active snapshot, if any.
func (s *Store) Current() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Snapshot{}, false
	}
	return *s.current, true
}

// Set replaces the active snapshot.
func (s *Store) Set(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &snap
	s.version++
}

// Clear drops the active snapshot.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.version++
}

// Version increases on every Set and Clear.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
