package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/casetrace/linkboard/pkg/buildinfo"
	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/observability"
	"github.com/casetrace/linkboard/pkg/pipeline"
	"github.com/casetrace/linkboard/pkg/session"
	"github.com/casetrace/linkboard/pkg/store"
)

// maxBodyBytes caps request bodies, matching the fetch client's
// document size cap.
const maxBodyBytes = 32 << 20

// =============================================================================
// Middleware
// =============================================================================

// instrument fires server hooks and logs one line per request.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.logger.Debug("request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", duration)
	})
}

// =============================================================================
// Response Helpers
// =============================================================================

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	}})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeGraphNotFound,
		errors.ErrCodeFileNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidGraph,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidLayout,
		errors.ErrCodeInvalidTheme, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// =============================================================================
// Graph CRUD
// =============================================================================

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	sums, err := s.cfg.Store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sums == nil {
		sums = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, sums)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	rec, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleSaveGraph serves both POST /api/graphs (fresh id) and
// PUT /api/graphs/{graphID} (replace). The body is a graph document.
func (s *Server) handleSaveGraph(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(r.Body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	id := chi.URLParam(r, "graphID")
	rec, err := s.cfg.Store.Save(r.Context(), store.Record{
		ID:    id,
		Name:  doc.Name,
		Graph: doc,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	s.logger.Info("graph saved", "id", rec.ID, "nodes", len(rec.Graph.Nodes), "edges", len(rec.Graph.Edges))
	writeJSON(w, status, rec)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "graphID")
	if err := s.cfg.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("graph deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func readDocument(body io.Reader) (graph.Document, error) {
	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return graph.Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return graph.UnmarshalDocument(data)
}

// =============================================================================
// Rendering
// =============================================================================

func (s *Server) handleRenderGraph(w http.ResponseWriter, r *http.Request) {
	rec, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts, format, err := s.renderOptions(r, rec)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// renderOptions translates query parameters into pipeline options.
func (s *Server) renderOptions(r *http.Request, rec store.Record) (pipeline.Options, string, error) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return pipeline.Options{}, "", err
	}

	opts := pipeline.Options{
		Document: &rec.Graph,
		Layout:   q.Get("layout"),
		Theme:    q.Get("theme"),
		Formats:  []string{format},
		Select:   splitParam(q["select"]),
		Refresh:  q.Get("refresh") == "true",
		Force:    s.cfg.Force,
		Config:   s.cfg.Render,
		Icons:    s.cfg.Icons,
		Logger:   s.logger,
	}

	var err error
	if opts.Width, err = intParam(q.Get("width")); err != nil {
		return pipeline.Options{}, "", err
	}
	if opts.Height, err = intParam(q.Get("height")); err != nil {
		return pipeline.Options{}, "", err
	}
	if raw := q.Get("scale"); raw != "" {
		scale, err := strconv.ParseFloat(raw, 64)
		if err != nil || scale <= 0 {
			return pipeline.Options{}, "", errors.New(errors.ErrCodeInvalidInput, "invalid scale: %q", raw)
		}
		opts.Scale = scale
	}

	return opts, format, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid dimension: %q", raw)
	}
	return n, nil
}

// splitParam flattens repeated query values, splitting each on commas.
func splitParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func contentTypeFor(format string) string {
	switch format {
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatJSON:
		return "application/json"
	default:
		return "image/svg+xml"
	}
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GraphID string `json:"graph_id"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse session request"))
		return
	}
	if req.GraphID == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "graph_id is required"))
		return
	}

	// The graph must exist before a session points at it.
	if _, err := s.cfg.Store.Get(r.Context(), req.GraphID); err != nil {
		s.writeError(w, err)
		return
	}

	sess := session.New(req.GraphID, session.DefaultTTL)
	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("session opened", "session", sess.ID, "graph", req.GraphID)
	writeJSON(w, http.StatusCreated, sess)
}
