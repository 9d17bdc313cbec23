// Package api serves the pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz                 liveness and build info
//	GET    /metrics                 Prometheus metrics, when configured
//	POST   /v1/compute              compute one definition
//	POST   /v1/batch                compute several definitions
//	GET    /v1/arrays               list saved arrays
//	GET    /v1/arrays/{name}        saved array metadata and definition
//	GET    /v1/arrays/{name}/data   saved item collection (binary)
//	DELETE /v1/arrays/{name}        delete a saved array
//
// /v1/compute accepts a JSON body shaped like pipeline.Options, or a raw TOML
// or YAML definition when the Content-Type says so; formats then come from the
// "formats" query parameter. The "artifact" query parameter returns one
// artifact as the response body instead of the JSON envelope.
package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stackarray/pkg/buildinfo"
	"github.com/matzehuels/stackarray/pkg/errors"
	"github.com/matzehuels/stackarray/pkg/pattern"
	"github.com/matzehuels/stackarray/pkg/pipeline"
	"github.com/matzehuels/stackarray/pkg/store"
)

// maxBody bounds request bodies.
const maxBody = 4 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Runner *pipeline.Runner
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Concurrency bounds batch requests.
	Concurrency int
	Logger      *log.Logger
}

// New creates a server around runner. The runner's store, if any, backs the
// /v1/arrays routes.
func New(runner *pipeline.Runner, metrics http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	return &Server{
		Runner:      runner,
		Metrics:     metrics,
		Concurrency: pipeline.DefaultConcurrency,
		Logger:      logger,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Status string         `json:"status"`
			Build  buildinfo.Info `json:"build"`
		}{"ok", buildinfo.Get()})
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/compute", s.handleCompute)
		r.Post("/batch", s.handleBatch)
		r.Route("/arrays", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/", s.handleList)
			r.Get("/{name}", s.handleGet)
			r.Get("/{name}/data", s.handleData)
			r.Delete("/{name}", s.handleDelete)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Runner.Store == nil {
			writeError(w, errors.New(errors.ErrCodeUnsupported, "no array store configured"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// computeResponse is the JSON envelope of one pipeline result. Artifacts are
// base64 encoded by encoding/json.
type computeResponse struct {
	Name      string            `json:"name"`
	Hash      string            `json:"hash"`
	Kind      string            `json:"kind"`
	Items     int               `json:"items"`
	Visible   int               `json:"visible"`
	Cached    bool              `json:"cached"`
	Saved     bool              `json:"saved"`
	Document  *pattern.Document `json:"document"`
	Artifacts map[string][]byte `json:"artifacts"`
}

func newComputeResponse(res *pipeline.Result) computeResponse {
	return computeResponse{
		Name:      res.Name,
		Hash:      res.Hash,
		Kind:      res.Document.Kind,
		Items:     res.Stats.Items,
		Visible:   res.Stats.Visible,
		Cached:    res.CacheInfo.ArrayHit,
		Saved:     res.Saved,
		Document:  res.Document,
		Artifacts: res.Artifacts,
	}
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	opts, err := readOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	artifact := r.URL.Query().Get("artifact")
	if artifact != "" {
		if err := pipeline.ValidateFormat(artifact); err != nil {
			writeError(w, err)
			return
		}
		opts.Formats = []string{artifact}
	}

	res, err := s.Runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if artifact != "" {
		w.Header().Set("Content-Type", contentType(artifact))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Artifacts[artifact])
		return
	}
	writeJSON(w, http.StatusOK, newComputeResponse(res))
}

// readOptions decodes the compute request body.
func readOptions(r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	media, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch media {
	case "application/toml":
		opts.Definition, err = pattern.Parse(body, pattern.FormatTOML)
	case "application/yaml", "application/x-yaml", "text/yaml":
		opts.Definition, err = pattern.Parse(body, pattern.FormatYAML)
	default:
		if err := json.Unmarshal(body, &opts); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
		}
		return opts, nil
	}
	if err != nil {
		return opts, err
	}
	q := r.URL.Query()
	if f := q.Get("formats"); f != "" {
		opts.Formats = strings.Split(f, ",")
	}
	opts.Save = q.Get("save") == "true"
	opts.Refresh = q.Get("refresh") == "true"
	return opts, nil
}

type batchRequest struct {
	Requests []pipeline.Options `json:"requests"`
}

type batchResponse struct {
	Results []computeResponse `json:"results"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "requests must not be empty"))
		return
	}
	results, err := s.Runner.Batch(r.Context(), req.Requests, s.Concurrency)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := batchResponse{Results: make([]computeResponse, len(results))}
	for i, res := range results {
		resp.Results[i] = newComputeResponse(res)
	}
	writeJSON(w, http.StatusOK, resp)
}

type arrayResponse struct {
	store.Info
	Hash       string          `json:"hash"`
	Definition json.RawMessage `json:"definition,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.Runner.Store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if infos == nil {
		infos = []store.Info{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"arrays": infos})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Runner.Store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, arrayResponse{
		Info: store.Info{
			Name:      rec.Name,
			Kind:      rec.Kind,
			Items:     rec.Items,
			Size:      len(rec.Data),
			UpdatedAt: rec.UpdatedAt,
		},
		Hash:       rec.Hash,
		Definition: rec.Definition,
	})
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Runner.Store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	data := rec.Data
	if format := r.URL.Query().Get("format"); format == pipeline.FormatDXF {
		if data, err = pipeline.Convert(rec.Data, pipeline.FormatBin, pipeline.FormatDXF); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", contentType(pipeline.FormatDXF))
	} else {
		w.Header().Set("Content-Type", contentType(pipeline.FormatBin))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Runner.Store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatJSON:
		return "application/json"
	case pipeline.FormatDXF:
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDefinition, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidKey, errors.ErrCodeCyclicExpression, errors.ErrCodeOutOfRange,
		errors.ErrCodeNotInGroup:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported, errors.ErrCodeNotImplementedYet:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	body := map[string]any{"error": err.Error()}
	if code := errors.GetCode(err); code != "" {
		body["code"] = code
	}
	writeJSON(w, statusOf(err), body)
}
