// Package api serves the lecture HTTP API, health and metrics endpoints and
// the browser UI.
package api

import (
	"net/http"

	"lecturenotes/internal/config"
	"lecturenotes/internal/pipeline"
	"lecturenotes/internal/web"

	"github.com/sirupsen/logrus"
)

// Server holds the handler dependencies.
type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	logger   *logrus.Logger
}

// New returns an API server backed by p.
func New(cfg *config.Config, p *pipeline.Pipeline, logger *logrus.Logger) *Server {
	return &Server{cfg: cfg, pipeline: p, logger: logger}
}

// Handler builds the full route table wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/lectures", s.handleList)
	mux.HandleFunc("POST /api/lectures", s.handleCreate)
	mux.HandleFunc("GET /api/lectures/{id}", s.handleGet)
	mux.HandleFunc("DELETE /api/lectures/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/lectures/{id}/generate-notes", s.handleGenerateNotes)
	mux.HandleFunc("GET /api/lectures/{id}/export", s.handleExport)
	mux.Handle("GET /health", HealthHandler())
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.Handle("GET /", web.Handler())
	return s.recoverer(s.logRequests(cors(mux)))
}
