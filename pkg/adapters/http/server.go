// Package http exposes the simulation service over a JSON HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/epinet"
	"github.com/aretw0/epinet/internal/logging"
	"github.com/aretw0/epinet/internal/presentation/graph"
	"github.com/aretw0/epinet/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// Simulator is the subset of *epinet.Service the handlers need.
type Simulator interface {
	Generate(ctx context.Context, n int) (epinet.Status, error)
	Step(ctx context.Context, simID string, days int) (epinet.Status, error)
	Graph(ctx context.Context, graphID string) (*domain.Graph, error)
	Simulation(ctx context.Context, simID string) (*domain.Simulation, error)
	State(ctx context.Context, simID string) ([]int, error)
	Timeseries(ctx context.Context, simID string, n int) ([]domain.Snapshot, error)
}

// Server holds the handler dependencies.
type Server struct {
	sim     Simulator
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for unexpected errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates the HTTP handler for sim.
func NewHandler(sim Simulator, opts ...Option) (http.Handler, error) {
	s := &Server{sim: sim, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	router, err := loadSpec(context.Background())
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(recoverer(s.logger))
	r.Use(validateRequests(router))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(Spec())
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Get("/health", s.Health)
	r.Post("/graph/generate", s.Generate)
	r.Post("/graph/generate/islamabad_uniform", s.Generate)
	r.Get("/graph/{graph_id}/export/json", s.ExportGraph)
	r.Get("/graph/{graph_id}/export/mermaid", s.ExportMermaid)
	r.Post("/sim/{sim_id}/step", s.Step)
	r.Get("/sim/{sim_id}/export/state.json", s.ExportState)
	r.Get("/sim/{sim_id}/timeseries", s.Timeseries)

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("Handler panicked", "method", r.Method, "path", r.URL.Path, "panic", rec)
					writeError(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type generateRequest struct {
	N int `json:"n"`
}

// Generate handles POST /graph/generate.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := s.sim.Generate(r.Context(), body.N)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type graphExport struct {
	Nodes []domain.Node    `json:"nodes"`
	Edges []domain.Edge    `json:"edges"`
	Meta  domain.GraphMeta `json:"meta"`
}

// ExportGraph handles GET /graph/{graph_id}/export/json.
func (s *Server) ExportGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.sim.Graph(r.Context(), chi.URLParam(r, "graph_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graphExport{Nodes: g.Nodes, Edges: g.Edges, Meta: g.Meta()})
}

// ExportMermaid handles GET /graph/{graph_id}/export/mermaid.
func (s *Server) ExportMermaid(w http.ResponseWriter, r *http.Request) {
	g, err := s.sim.Graph(r.Context(), chi.URLParam(r, "graph_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var overlay *graph.StateOverlay
	if simID := r.URL.Query().Get("sim_id"); simID != "" {
		sim, err := s.sim.Simulation(r.Context(), simID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		overlay = graph.OverlayOf(sim)
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(g, overlay, limit))
}

type stepRequest struct {
	Days *int `json:"days"`
}

// Step handles POST /sim/{sim_id}/step. A missing body or days field means one day.
func (s *Server) Step(w http.ResponseWriter, r *http.Request) {
	var body stepRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	days := 1
	if body.Days != nil {
		days = *body.Days
	}

	status, err := s.sim.Step(r.Context(), chi.URLParam(r, "sim_id"), days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ExportState handles GET /sim/{sim_id}/export/state.json.
func (s *Server) ExportState(w http.ResponseWriter, r *http.Request) {
	codes, err := s.sim.State(r.Context(), chi.URLParam(r, "sim_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int{"state": codes})
}

// Timeseries handles GET /sim/{sim_id}/timeseries.
func (s *Server) Timeseries(w http.ResponseWriter, r *http.Request) {
	last, _ := strconv.Atoi(r.URL.Query().Get("last"))
	series, err := s.sim.Timeseries(r.Context(), chi.URLParam(r, "sim_id"), last)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Snapshot{"series": series})
}
