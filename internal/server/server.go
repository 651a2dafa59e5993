// Package server serves the schema-driven configuration form over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-configform/internal/loader"
	"github.com/goliatone/go-configform/pkg/output"
	"github.com/goliatone/go-configform/pkg/renderers/vanilla"
	"github.com/goliatone/go-configform/pkg/resolve"
	"github.com/goliatone/go-configform/pkg/schema"
)

const (
	// DefaultAddr is used when no address is configured.
	DefaultAddr = "127.0.0.1:8080"
	// DefaultMaxUploadBytes caps uploaded schema and configuration files.
	DefaultMaxUploadBytes = int64(5 << 20)

	shutdownTimeout = 5 * time.Second
	reloadPath      = "/ws"
)

// Server wires the store, the HTML renderer, the live-reload hub and the
// optional file watcher.
type Server struct {
	addr       string
	logger     *slog.Logger
	loader     schema.Loader
	renderer   *vanilla.Renderer
	resolver   *resolve.Resolver
	store      *Store
	hub        *Hub
	schemaDir  string
	pattern    string
	watch      bool
	outputName string
	maxUpload  int64
	debounce   time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoader overrides the schema loader used for files and URLs.
func WithLoader(l schema.Loader) Option {
	return func(s *Server) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithRenderer overrides the HTML renderer.
func WithRenderer(r *vanilla.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithSchemaDir lists schemas found below dir on the form page.
func WithSchemaDir(dir, pattern string) Option {
	return func(s *Server) {
		s.schemaDir = dir
		if pattern != "" {
			s.pattern = pattern
		}
	}
}

// WithWatch enables reloading when schema files change on disk.
func WithWatch(enabled bool) Option {
	return func(s *Server) {
		s.watch = enabled
	}
}

// WithDebounce overrides the watcher debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithOutputName sets the download file name for JSON output.
func WithOutputName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.outputName = name
		}
	}
}

// WithMaxUploadBytes caps uploaded files.
func WithMaxUploadBytes(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxUpload = limit
		}
	}
}

// New constructs a Server with defaults for everything not configured.
func New(options ...Option) (*Server, error) {
	s := &Server{
		addr:       DefaultAddr,
		pattern:    loader.DefaultPattern,
		outputName: output.DefaultFilename,
		maxUpload:  DefaultMaxUploadBytes,
		debounce:   DefaultDebounce,
		store:      &Store{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.loader == nil {
		s.loader = loader.New(schema.NewLoaderOptions())
	}
	if s.renderer == nil {
		renderer, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("server: renderer: %w", err)
		}
		s.renderer = renderer
	}
	s.resolver = resolve.New(resolve.WithLogger(s.logger))
	s.hub = NewHub(s.logger)
	return s, nil
}

// Store exposes the active schema holder.
func (s *Server) Store() *Store {
	return s.store
}

// Hub exposes the live-reload hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// LoadSchema loads raw (a path or URL) and makes it the active schema.
func (s *Server) LoadSchema(ctx context.Context, raw string) error {
	src := schema.ParseSource(raw)
	if src == nil {
		return errors.New("server: schema location is required")
	}
	snap, err := loadSnapshot(ctx, s.loader, "", src)
	if err != nil {
		return err
	}
	s.store.Set(snap)
	s.logger.Info("schema loaded", "schema", snap.Name, "meta", snap.Meta)
	return nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /schema", s.handleSchemaUpload)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("POST /config", s.handleConfigUpload)
	mux.HandleFunc("POST /api/resolve", s.handleAPIResolve)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET "+reloadPath, s.hub)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(vanilla.AssetsFS())))
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	group, gctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	group.Go(func() error {
		return s.hub.Run(gctx)
	})

	if s.watch {
		w, err := newWatcher(s.watchDirs(), s.debounce, s.logger, s.onFilesChanged)
		if err != nil {
			_ = listener.Close()
			return err
		}
		group.Go(func() error {
			return w.Run(gctx)
		})
	}

	group.Go(func() error {
		s.logger.Info("listening", "addr", listener.Addr().String())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func (s *Server) watchDirs() []string {
	var dirs []string
	if snap, ok := s.store.Current(); ok && snap.Location != "" && schema.ParseSource(snap.Location).Kind() == schema.SourceKindFile {
		dirs = append(dirs, filepath.Dir(snap.Location))
	}
	if s.schemaDir != "" {
		dirs = append(dirs, s.schemaDir)
	}
	return dirs
}

// onFilesChanged reloads the active schema when its file changed and tells
// browsers to refresh. A broken edit keeps the previous schema active.
func (s *Server) onFilesChanged(ctx context.Context, paths []string) {
	snap, ok := s.store.Current()
	reload := false
	if ok && snap.Location != "" {
		active, err := filepath.Abs(snap.Location)
		if err == nil {
			for _, p := range paths {
				if abs, err := filepath.Abs(p); err == nil && abs == active {
					reload = true
					break
				}
			}
		}
	}

	if reload {
		next, err := loadSnapshot(ctx, s.loader, snap.Name, schema.SourceFromFile(snap.Location))
		if err != nil {
			s.logger.Warn("schema reload failed", "schema", snap.Name, "error", err)
			return
		}
		s.store.Set(next)
		s.logger.Info("schema reloaded", "schema", next.Name, "meta", next.Meta)
	}
	s.hub.Broadcast(ReloadMessage)
}

func (s *Server) discover() []loader.Entry {
	if s.schemaDir == "" {
		return nil
	}
	entries, err := loader.Discover(os.DirFS(s.schemaDir), s.pattern)
	if err != nil {
		s.logger.Warn("schema discovery failed", "dir", s.schemaDir, "error", err)
		return nil
	}
	return entries
}
