// Package api serves path generation over HTTP.
//
// # Endpoints
//
//	GET  /healthz       liveness probe
//	GET  /version       build information
//	POST /v1/paths      generate the Path Table of a turnout
//	POST /v1/compare    generate and check against the turnout's saved table
//	POST /v1/render     track diagram (svg or dot) with a highlighted group
//	POST /v1/decode     decode an encoded Path Table
//
// Requests and responses are JSON. Errors carry the machine-readable code of
// pkg/errors and the request ID, which is also returned in the X-Request-ID
// header.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/turnoutpaths/pkg/buildinfo"
	apperrors "github.com/matzehuels/turnoutpaths/pkg/errors"
	"github.com/matzehuels/turnoutpaths/pkg/observability"
	"github.com/matzehuels/turnoutpaths/pkg/paths"
	"github.com/matzehuels/turnoutpaths/pkg/pipeline"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes   = 1 << 20
	requestTimeout = 30 * time.Second
)

// Server handles API requests with a shared runner.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
}

// NewServer returns a server generating with runner. defaults apply to
// every request; a request's own options replace them field by field.
func NewServer(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, defaults: defaults, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/paths", s.handlePaths)
		r.Post("/compare", s.handleCompare)
		r.Post("/render", s.handleRender)
		r.Post("/decode", s.handleDecode)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// =============================================================================
// Middleware
// =============================================================================

type requestIDKey struct{}

// RequestID returns the request ID stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestID keeps a caller-supplied UUID or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := RequestID(ctx)
		start := time.Now()
		observability.API().OnRequest(ctx, id, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		observability.API().OnResponse(ctx, id, r.Method, r.URL.Path, status, duration)
		s.logger.Debug("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", duration)
	})
}

// =============================================================================
// Wire types
// =============================================================================

// PathsRequest asks for the Path Table of one turnout.
type PathsRequest struct {
	Turnout turnout.Definition `json:"turnout"`
	Options *pipeline.Options  `json:"options,omitempty"`
}

// PathsResponse is the generated table of one turnout.
type PathsResponse struct {
	Title      string            `json:"title"`
	Table      paths.Table       `json:"table"`
	Encoded    []int8            `json:"encoded"`
	Length     int               `json:"length"`
	Comparison *paths.Comparison `json:"comparison,omitempty"`
	Stats      pipeline.Stats    `json:"stats"`
}

// RenderRequest asks for a track diagram.
type RenderRequest struct {
	PathsRequest
	Render pipeline.RenderOptions `json:"render"`
}

// DecodeRequest carries an encoded Path Table as signed byte values.
type DecodeRequest struct {
	Encoded []int8 `json:"encoded"`
}

// DecodeResponse is the decoded form of a Path Table.
type DecodeResponse struct {
	Table  paths.Table `json:"table"`
	Length int         `json:"length"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      apperrors.Code `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
}

func toInt8(buf []byte) []int8 {
	out := make([]int8, len(buf))
	for i, b := range buf {
		out[i] = int8(b)
	}
	return out
}

func fromInt8(vals []int8) []byte {
	out := make([]byte, len(vals))
	for i, v := range vals {
		out[i] = byte(v)
	}
	return out
}

func newPathsResponse(res *pipeline.Result) PathsResponse {
	return PathsResponse{
		Title:      res.Title,
		Table:      res.Table,
		Encoded:    toInt8(res.Encoded),
		Length:     len(res.Encoded),
		Comparison: res.Comparison,
		Stats:      res.Stats,
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Current())
}

func (s *Server) handlePaths(w http.ResponseWriter, r *http.Request) {
	var req PathsRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Generate(r.Context(), req.Turnout, s.options(req.Options))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPathsResponse(res))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req PathsRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Compare(r.Context(), req.Turnout, s.options(req.Options))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPathsResponse(res))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	switch req.Render.Format {
	case "":
		req.Render.Format = pipeline.FormatSVG
	case pipeline.FormatSVG, pipeline.FormatDOT:
	default:
		s.writeError(w, r, apperrors.New(apperrors.ErrCodeUnsupported, "format %q is not served over HTTP", req.Render.Format))
		return
	}
	out, err := s.runner.Render(r.Context(), req.Turnout, s.options(req.Options), req.Render)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Render.Format == pipeline.FormatDOT {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
	} else {
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	buf := fromInt8(req.Encoded)
	tbl, err := paths.Decode(buf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n, _ := paths.Length(buf)
	writeJSON(w, http.StatusOK, DecodeResponse{Table: tbl, Length: n})
}

// options overlays a request's options on the server defaults.
func (s *Server) options(req *pipeline.Options) pipeline.Options {
	opts := s.defaults
	if req == nil {
		return opts
	}
	if req.AngleTolerance > 0 {
		opts.AngleTolerance = req.AngleTolerance
	}
	if req.ConnectDistance > 0 {
		opts.ConnectDistance = req.ConnectDistance
	}
	if req.MaxGroups > 0 {
		opts.MaxGroups = req.MaxGroups
	}
	opts.IgnoreNoCombine = opts.IgnoreNoCombine || req.IgnoreNoCombine
	opts.EndpointConflicts = opts.EndpointConflicts || req.EndpointConflicts
	opts.DisableGeneration = opts.DisableGeneration || req.DisableGeneration
	opts.PreferSavedTable = opts.PreferSavedTable || req.PreferSavedTable
	opts.Refresh = req.Refresh
	return opts
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "error", err)
	}
	code := apperrors.GetCode(err)
	if code == "" {
		code = apperrors.ErrCodeInternal
	}
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   apperrors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	})
}
