// Package http exposes log checking and stored verdicts over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/vigil/pkg/adapters/file"
	"github.com/aretw0/vigil/pkg/adapters/memory"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/logsource"
	"github.com/aretw0/vigil/pkg/observability"
	"github.com/aretw0/vigil/pkg/ports"
	"github.com/aretw0/vigil/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxBodySize bounds the size of a check request.
const MaxBodySize = 16 << 20

// CheckRequest is the body of POST /v1/check.
type CheckRequest struct {
	// Name overrides the definition name in the verdict.
	Name string `json:"name,omitempty"`
	// Definition is a YAML or JSON automaton document.
	Definition string            `json:"definition"`
	Params     map[string]string `json:"params,omitempty"`
	// Log is the raw log text.
	Log    string           `json:"log"`
	Source logsource.Config `json:"source,omitempty"`
}

// VerdictResponse is a verdict with its result label.
type VerdictResponse struct {
	domain.Verdict
	Result string `json:"result"`
}

// Server serves the vigil API.
type Server struct {
	Store    ports.VerdictStore
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore sets the verdict store. Defaults to an in-memory store.
func WithStore(store ports.VerdictStore) Option {
	return func(s *Server) {
		s.Store = store
	}
}

// WithMetrics records verdicts in m and serves g on /metrics.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Metrics = m
		s.Gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler.
func NewHandler(opts ...Option) http.Handler {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	if s.Store == nil {
		s.Store = memory.NewStore()
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.GetHealth)
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/check", s.Check)
		r.Get("/verdicts", s.ListVerdicts)
		r.Get("/verdicts/{id}", s.GetVerdict)
		r.Delete("/verdicts/{id}", s.DeleteVerdict)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Check handles POST /v1/check. A definition that does not parse, or source
// settings that do not compile, are client errors; a definition that parses but
// is invalid yields a defective verdict.
func (s *Server) Check(w http.ResponseWriter, r *http.Request) {
	var body CheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	def, err := file.Parse([]byte(body.Definition))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	src, err := logsource.New(strings.NewReader(body.Log), body.Source)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	name := body.Name
	if name == "" {
		name = def.Name
	}
	run := runner.New(
		runner.WithStore(s.Store),
		runner.WithMetrics(s.Metrics),
		runner.WithLogger(s.Logger),
		runner.WithWorkers(1),
	)
	verdicts, err := run.Run(r.Context(), []runner.Job{{
		Name:   name,
		Loader: memory.NewLoader(def),
		Params: body.Params,
		Source: "request",
		Open: func(context.Context) (ports.EntrySource, error) {
			return src, nil
		},
	}})
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, response(verdicts[0]))
}

// ListVerdicts handles GET /v1/verdicts.
func (s *Server) ListVerdicts(w http.ResponseWriter, r *http.Request) {
	verdicts, err := s.Store.List(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]VerdictResponse, len(verdicts))
	for i, v := range verdicts {
		out[i] = response(v)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// GetVerdict handles GET /v1/verdicts/{id}.
func (s *Server) GetVerdict(w http.ResponseWriter, r *http.Request) {
	v, err := s.Store.Load(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrVerdictNotFound) {
		s.fail(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, response(v))
}

// DeleteVerdict handles DELETE /v1/verdicts/{id}.
func (s *Server) DeleteVerdict(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func response(v domain.Verdict) VerdictResponse {
	return VerdictResponse{Verdict: v, Result: v.Result()}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "err", err)
	} else {
		s.Logger.Warn("request rejected", "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
