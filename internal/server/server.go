// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research pipeline as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pdiddy/research-assistant/internal/assistant"
	"github.com/pdiddy/research-assistant/internal/observability"
	"github.com/pdiddy/research-assistant/internal/paperstore"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Pipeline is the orchestration surface the server calls into.
// *assistant.Assistant implements it.
type Pipeline interface {
	SearchAndAnalyze(ctx context.Context, topic string, count int) (assistant.SearchOutput, error)
	AnswerQuestion(ctx context.Context, topic, question string) (assistant.Synthesis, error)
	GenerateReview(ctx context.Context, topic string) (assistant.Synthesis, error)
}

// Library is the read side of the paper store. *paperstore.Store implements it.
type Library interface {
	QueryByTopic(ctx context.Context, topic string, limit int) ([]types.Paper, error)
	Topics(ctx context.Context) ([]paperstore.TopicSummary, error)
	Ping(ctx context.Context) error
}

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	pipeline   Pipeline
	library    Library
	metrics    *observability.Metrics
	validate   *validator.Validate
	logger     zerolog.Logger
}

// New creates a Server. metrics may be nil.
func New(cfg types.ServerConfig, pipeline Pipeline, library Library, metrics *observability.Metrics, logger zerolog.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		library:  library,
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("component", "http-server").Logger(),
	}
	s.router = s.buildRouter()

	// Analysis runs can take minutes, so there is no write timeout.
	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/searches", s.searchAndAnalyze)
		r.Post("/questions", s.answerQuestion)
		r.Post("/reviews", s.generateReview)
		r.Get("/topics", s.listTopics)
		r.Get("/topics/{topic}/papers", s.listPapers)
	})
	return r
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	s.logger.Info().Str("address", ln.Addr().String()).Msg("HTTP server starting")
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// --- request and response bodies ---

type searchRequest struct {
	Topic string `json:"topic" validate:"required"`
	Count int    `json:"count" validate:"min=1,max=50"`
}

type questionRequest struct {
	Topic    string `json:"topic" validate:"required"`
	Question string `json:"question" validate:"required"`
}

type reviewRequest struct {
	Topic string `json:"topic" validate:"required"`
}

type searchResponse struct {
	assistant.SearchOutput
	Titles []string `json:"titles"`
	Error  string   `json:"error,omitempty"`
}

// --- handlers ---

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.library.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) searchAndAnalyze(w http.ResponseWriter, r *http.Request) {
	req := searchRequest{Count: 5}
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.pipeline.SearchAndAnalyze(r.Context(), req.Topic, req.Count)
	if err != nil {
		if len(out.Papers) == 0 && len(out.Failures) == 0 {
			s.writePipelineError(w, err)
			return
		}
		// Papers analyzed before the failure are already stored; report them.
		status, msg := s.errorStatus(err)
		writeJSON(w, status, searchResponse{SearchOutput: out, Titles: types.Titles(out.Papers), Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{SearchOutput: out, Titles: types.Titles(out.Papers)})
}

func (s *Server) answerQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.pipeline.AnswerQuestion(r.Context(), req.Topic, req.Question)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) generateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.pipeline.GenerateReview(r.Context(), req.Topic)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.library.Topics(r.Context())
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	if topics == nil {
		topics = []paperstore.TopicSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

func (s *Server) listPapers(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, leaving the segment escaped.
	topic := chi.URLParam(r, "topic")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(topic)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid topic")
			return
		}
		topic = unescaped
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	papers, err := s.library.QueryByTopic(r.Context(), topic, limit)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	if papers == nil {
		papers = []types.Paper{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"topic": topic, "papers": papers})
}

// decode parses and validates a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	default:
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
}

// writePipelineError writes err as a JSON error with its mapped status.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	status, msg := s.errorStatus(err)
	writeError(w, status, msg)
}

// errorStatus maps pipeline errors to an HTTP status and client message.
func (s *Server) errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, assistant.ErrNoContext):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, assistant.ErrEmptyInput), errors.Is(err, search.ErrInvalidQuery):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, search.ErrSourceUnavailable):
		return http.StatusBadGateway, err.Error()
	default:
		s.logger.Error().Err(err).Msg("request failed")
		return http.StatusInternalServerError, "internal error"
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
