package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-configform/pkg/form"
	"github.com/goliatone/go-configform/pkg/output"
	"github.com/goliatone/go-configform/pkg/renderers/vanilla"
	"github.com/goliatone/go-configform/pkg/resolve"
	"github.com/goliatone/go-configform/pkg/schema"
	"github.com/goliatone/go-configform/pkg/validation"
)

const actionDownload = "download"

var (
	errNoSchema      = errors.New("server: no schema loaded")
	errUnknownSchema = errors.New("server: unknown schema")
	errNoFile        = errors.New("server: no file selected")
	errInvalidUpload = errors.New("server: invalid upload")
	errInvalidConfig = errors.New("server: invalid configuration file")
)

// pageMessages holds the wording shown to users for known errors.
var pageMessages = []struct {
	err  error
	text string
}{
	{errNoSchema, "No schema loaded"},
	{errUnknownSchema, "Unknown schema"},
	{errNoFile, "No file selected"},
	{errInvalidUpload, "Invalid upload"},
	{errInvalidConfig, "Invalid configuration file"},
	{validation.ErrConfigNotObject, "Configuration file must be a JSON object"},
}

// userMessage renders err for the page. Known errors get their display
// wording followed by any detail they wrap; other errors already carry
// user-facing text.
func userMessage(err error) string {
	for _, m := range pageMessages {
		if !errors.Is(err, m.err) {
			continue
		}
		detail, ok := strings.CutPrefix(err.Error(), m.err.Error()+": ")
		if !ok || detail == "" {
			return m.text + "."
		}
		return m.text + ": " + detail
	}
	return err.Error()
}

// page builds the base page for the active snapshot.
func (s *Server) page(snap Snapshot, ok bool) vanilla.Page {
	page := vanilla.Page{
		LiveReload: s.watch,
		ReloadPath: reloadPath,
	}
	for _, entry := range s.discover() {
		page.Schemas = append(page.Schemas, vanilla.SchemaLink{
			Name:   entry.Name,
			Active: ok && entry.Name == snap.Name,
		})
	}
	if ok {
		plan := snap.Plan
		page.Plan = &plan
		page.Meta = snap.Meta
	}
	return page
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, page vanilla.Page) {
	body, err := s.renderer.RenderPage(r.Context(), page)
	if err != nil {
		s.logger.Error("render page failed", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("schema"); name != "" {
		if err := s.selectSchema(r, name); err != nil {
			s.store.Clear()
			page := s.page(Snapshot{}, false)
			page.Error = userMessage(err)
			s.renderPage(w, r, http.StatusBadRequest, page)
			return
		}
	}
	snap, ok := s.store.Current()
	s.renderPage(w, r, http.StatusOK, s.page(snap, ok))
}

// selectSchema activates a discovered schema by name. Only names returned by
// discovery are accepted.
func (s *Server) selectSchema(r *http.Request, name string) error {
	for _, entry := range s.discover() {
		if entry.Name != name {
			continue
		}
		location := filepath.Join(s.schemaDir, filepath.FromSlash(entry.Name))
		snap, err := loadSnapshot(r.Context(), s.loader, entry.Name, schema.SourceFromFile(location))
		if err != nil {
			return err
		}
		s.store.Set(snap)
		s.logger.Info("schema selected", "schema", snap.Name)
		return nil
	}
	return fmt.Errorf("%w: %s", errUnknownSchema, name)
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return nil, "", fmt.Errorf("%w: %w", errInvalidUpload, err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", errNoFile
		}
		return nil, "", fmt.Errorf("%w: %w", errInvalidUpload, err)
	}
	defer func(file multipart.File) {
		_ = file.Close()
	}(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", errInvalidUpload, err)
	}
	return data, filepath.Base(header.Filename), nil
}

// handleSchemaUpload activates an uploaded schema. A schema that fails
// validation clears the active one and lists its issues.
func (s *Server) handleSchemaUpload(w http.ResponseWriter, r *http.Request) {
	var issues []validation.SchemaIssue
	data, name, err := s.readUpload(w, r, "schema")
	if err == nil {
		var doc schema.Document
		doc, err = schema.NewDocument(schema.SourceFromUpload(name), data)
		if err == nil {
			if result := validation.ValidateDocument(doc); !result.Valid {
				issues = result.Issues
			}
			var snap Snapshot
			snap, err = NewSnapshot(name, doc)
			if err == nil {
				s.store.Set(snap)
				s.logger.Info("schema uploaded", "schema", snap.Name)
				s.renderPage(w, r, http.StatusOK, s.page(snap, true))
				return
			}
		}
	}

	s.store.Clear()
	s.logger.Info("schema upload rejected", "error", err)
	page := s.page(Snapshot{}, false)
	page.Error = userMessage(err)
	page.Issues = issues
	s.renderPage(w, r, http.StatusBadRequest, page)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.store.Current()
	if !ok {
		page := s.page(snap, ok)
		page.Error = userMessage(errNoSchema)
		s.renderPage(w, r, http.StatusConflict, page)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	page := s.page(snap, ok)
	format, err := output.ParseFormat(r.PostForm.Get("format"))
	if err != nil {
		page.Error = userMessage(err)
		s.renderPage(w, r, http.StatusBadRequest, page)
		return
	}
	page.OutputFormat = string(format)

	in, err := form.Collect(snap.Plan, form.URLValues(r.PostForm))
	if err != nil {
		page.Values = form.CollectPartial(snap.Plan, form.URLValues(r.PostForm))
		page.Error = userMessage(err)
		s.renderPage(w, r, http.StatusBadRequest, page)
		return
	}
	page.Values = in

	tree, err := s.resolver.Resolve(r.Context(), snap.Root, in)
	if err != nil {
		page.Error = userMessage(err)
		s.renderPage(w, r, http.StatusUnprocessableEntity, page)
		return
	}
	body, err := output.Encode(tree, format)
	if err != nil {
		s.logger.Error("encode output failed", "error", err)
		http.Error(w, "failed to encode configuration", http.StatusInternalServerError)
		return
	}

	if r.PostForm.Get("action") == actionDownload {
		name := s.outputName
		if format != output.FormatJSON {
			name = output.Filename(format)
		}
		w.Header().Set("Content-Type", output.ContentType(format))
		w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(name))
		_, _ = w.Write(body)
		return
	}

	page.Output = string(body)
	s.renderPage(w, r, http.StatusOK, page)
}

// handleConfigUpload checks an existing configuration against the active
// schema and prefills the form with its values.
func (s *Server) handleConfigUpload(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.store.Current()
	page := s.page(snap, ok)
	if !ok {
		page.Error = userMessage(errNoSchema)
		s.renderPage(w, r, http.StatusConflict, page)
		return
	}

	data, name, err := s.readUpload(w, r, "config")
	if err != nil {
		page.Error = userMessage(err)
		s.renderPage(w, r, http.StatusBadRequest, page)
		return
	}

	config, err := parseConfig(name, data)
	if err != nil {
		page.Error = userMessage(err)
		s.renderPage(w, r, http.StatusBadRequest, page)
		return
	}

	result, err := validation.CheckConfig(snap.Raw, config)
	if err != nil {
		page.Error = userMessage(err)
		s.renderPage(w, r, http.StatusBadRequest, page)
		return
	}

	page.Values = form.Prefill(snap.Root, config)
	page.Status = result.Summary(name)
	page.Issues = result.Issues
	page.InvalidSections = result.InvalidSections
	s.renderPage(w, r, http.StatusOK, page)
}

func parseConfig(name string, data []byte) (any, error) {
	doc, err := schema.NewDocument(schema.SourceFromUpload(name), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidConfig, err)
	}
	config, err := doc.Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidConfig, err)
	}
	return config, nil
}

type resolveRequest struct {
	Values map[string]string `json:"values"`
	Format string            `json:"format,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// handleAPIResolve resolves values keyed by dotted path. Paths that are not
// leaves of the active schema are rejected; missing leaves count as empty.
func (s *Server) handleAPIResolve(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.store.Current()
	if !ok {
		writeJSON(w, http.StatusConflict, apiError{Code: "NoSchema", Message: userMessage(errNoSchema)})
		return
	}

	var req resolveRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Code: "BadRequest", Message: "Invalid JSON body: " + err.Error()})
		return
	}
	format, err := output.ParseFormat(req.Format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Code: "BadRequest", Message: err.Error()})
		return
	}

	keys := make([]string, 0, len(req.Values))
	for key := range req.Values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	if unknown := form.UnknownPaths(snap.Plan, keys); len(unknown) > 0 {
		writeJSON(w, http.StatusBadRequest, apiError{Code: "UnknownPath", Path: unknown[0], Message: "Unknown field path: " + unknown[0]})
		return
	}

	tree, err := s.resolver.Resolve(r.Context(), snap.Root, resolve.Inputs(req.Values))
	if err != nil {
		var resErr *resolve.Error
		if errors.As(err, &resErr) {
			writeJSON(w, http.StatusUnprocessableEntity, apiError{Code: string(resErr.Code), Path: resErr.Path.String(), Message: resErr.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, apiError{Code: "Internal", Message: err.Error()})
		return
	}

	body, err := output.Encode(tree, format)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Code: "Internal", Message: err.Error()})
		return
	}
	w.Header().Set("Content-Type", output.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.store.Current()
	payload := map[string]any{"status": "ok", "schema": nil, "version": s.store.Version()}
	if ok {
		payload["schema"] = snap.Name
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
