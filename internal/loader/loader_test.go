package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-configform/pkg/schema"
)

func TestLoader_File(t *testing.T) {
	l := New(schema.NewLoaderOptions())

	doc, err := l.Load(context.Background(), schema.SourceFromFile(filepath.Join("testdata", "schemas", "app.schema.json")))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Format() != schema.FormatJSON {
		t.Fatalf("expected json format, got %s", doc.Format())
	}
	root, err := schema.Load(doc)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if root.Title() != "App" {
		t.Fatalf("unexpected title %q", root.Title())
	}
}

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{
		"schemas/app.yaml": {Data: []byte("type: object\nproperties:\n  a: {}\n")},
	}
	l := New(schema.NewLoaderOptions(schema.WithFileSystem(files)))

	doc, err := l.Load(context.Background(), schema.SourceFromFS("schemas/app.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Format() != schema.FormatYAML {
		t.Fatalf("expected yaml format, got %s", doc.Format())
	}

	if _, err := l.Load(context.Background(), schema.SourceFromFS("schemas")); err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Fatalf("expected directory error, got %v", err)
	}
	if _, err := l.Load(context.Background(), schema.SourceFromFS("../outside.json")); !errors.Is(err, fs.ErrInvalid) {
		t.Fatalf("expected invalid path error, got %v", err)
	}
	if _, err := New(schema.NewLoaderOptions()).Load(context.Background(), schema.SourceFromFS("schemas/app.yaml")); err == nil {
		t.Fatalf("expected error without a file system")
	}
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app.schema.json":
			if !strings.Contains(r.Header.Get("Accept"), "application/schema+json") {
				http.Error(w, "bad accept", http.StatusNotAcceptable)
				return
			}
			w.Header().Set("Content-Type", "application/schema+json")
			_, _ = w.Write([]byte(`{"type":"object","properties":{}}`))
		case "/login":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	disabled := New(schema.NewLoaderOptions())
	if _, err := disabled.Load(context.Background(), schema.SourceFromURL(srv.URL+"/app.schema.json")); err == nil || !strings.Contains(err.Error(), "http support disabled") {
		t.Fatalf("expected http disabled error, got %v", err)
	}

	l := New(schema.NewLoaderOptions(schema.WithHTTPClient(srv.Client()), schema.WithHTTPFallback(time.Second)))
	if _, err := l.Load(context.Background(), schema.SourceFromURL(srv.URL+"/app.schema.json")); err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err := l.Load(context.Background(), schema.SourceFromURL(srv.URL+"/missing.json"))
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if _, err := l.Load(context.Background(), schema.SourceFromURL(srv.URL+"/login")); err == nil || !strings.Contains(err.Error(), "HTML page") {
		t.Fatalf("expected HTML rejection, got %v", err)
	}
}

func TestLoader_SizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	payload := `{"type":"object","properties":{"a":{"description":"` + strings.Repeat("x", 64) + `"}}}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := New(schema.NewLoaderOptions(schema.WithMaxDocumentBytes(32)))
	if _, err := l.Load(context.Background(), schema.SourceFromFile(path)); !errors.Is(err, ErrDocumentTooLarge) {
		t.Fatalf("expected ErrDocumentTooLarge, got %v", err)
	}

	l = New(schema.NewLoaderOptions(schema.WithMaxDocumentBytes(int64(len(payload)))))
	if _, err := l.Load(context.Background(), schema.SourceFromFile(path)); err != nil {
		t.Fatalf("payload at the limit must load: %v", err)
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(schema.NewLoaderOptions())
	if _, err := l.Load(ctx, schema.SourceFromFile(filepath.Join("testdata", "schemas", "app.schema.json"))); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := l.Load(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil source")
	}
}

func TestDiscover(t *testing.T) {
	entries, err := Discover(os.DirFS(filepath.Join("testdata", "schemas")), "")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	want := []Entry{
		{Name: "app.schema.json", Title: "app"},
		{Name: "nested/worker.schema.json", Title: "worker"},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	entries, err = Discover(os.DirFS(filepath.Join("testdata", "schemas")), "**/*.schema.{json,yaml}")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(entries) != 3 || entries[2].Name != "service.schema.yaml" || entries[2].Title != "service" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	if _, err := Discover(os.DirFS("testdata"), "[invalid"); err == nil {
		t.Fatalf("expected invalid pattern error")
	}
}

func TestMatch(t *testing.T) {
	if !Match("", "a/b/c.schema.json") || Match("", "c.json") {
		t.Fatalf("unexpected default pattern matching")
	}
}
