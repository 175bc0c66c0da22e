// Package api implements the procscope HTTP API.
//
// The API exposes stored processes and their analyses for dashboards and
// other programmatic consumers. All analysis endpoints run through the
// shared pipeline runner, so results and caching behave exactly like the
// CLI.
//
// # Endpoints
//
//	GET    /api/processes                         List stored processes
//	POST   /api/processes                         Import a process document
//	GET    /api/processes/{id}                    Fetch the stored document
//	DELETE /api/processes/{id}                    Delete a process
//	GET    /api/processes/{id}/layout             Layered layout placements
//	GET    /api/processes/{id}/paths              Simple start-to-end paths
//	GET    /api/processes/{id}/bottlenecks        Convergence points
//	GET    /api/processes/{id}/critical-path      Heaviest start-to-end path
//	GET    /api/processes/{id}/statistics         Aggregate process statistics
//	GET    /api/processes/{id}/export             Full document (json, csv, dot, svg)
//	GET    /api/search/tasks?q=...                Find a task across all processes
//	GET    /api/gateways                          Branching points across all processes
//	GET    /api/kpi?weight=duration|cost          Weight totals per process
//	GET    /api/resources                         Required roles per process
//
// Analysis endpoints accept weight, max_path_length, and refresh query
// parameters; layout additionally accepts node_spacing_x and layer_spacing_y.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/procscope/procscope/pkg/observability"
	"github.com/procscope/procscope/pkg/pipeline"
	"github.com/procscope/procscope/pkg/store"
)

// Server holds the handler dependencies.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// NewServer creates a server around a pipeline runner. The runner's store
// is reused for the document management endpoints.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: runner,
		store:  runner.Store,
		logger: logger,
	}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/processes", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleImport)

		r.Route("/{processID}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/layout", s.handleLayout)
			r.Get("/paths", s.handlePaths)
			r.Get("/bottlenecks", s.handleBottlenecks)
			r.Get("/critical-path", s.handleCriticalPath)
			r.Get("/statistics", s.handleStatistics)
			r.Get("/export", s.handleExport)
		})
	})

	r.Get("/api/search/tasks", s.handleSearchTasks)
	r.Get("/api/gateways", s.handleGateways)
	r.Get("/api/kpi", s.handleKPI)
	r.Get("/api/resources", s.handleResources)

	return r
}

// HTTPServer returns an http.Server for the API on addr. Timeouts are
// generous because large graphs can take a while to analyze cold.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
}

// ListenAndServe runs the API on addr until the server fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.HTTPServer(addr).ListenAndServe()
}

// logRequests emits one structured log line per request and feeds the HTTP
// observability hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", elapsed.Round(time.Millisecond))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
