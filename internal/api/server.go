package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/telder/paperidx/internal/config"
	"github.com/telder/paperidx/internal/embed"
	"github.com/telder/paperidx/internal/index"
	"github.com/telder/paperidx/internal/pipeline"
)

// Server is the HTTP API server for paperidx.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	coordinator  *pipeline.Coordinator
	writer       *index.Writer
	embedder     embed.Embedder
	embedStats   *embed.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, coord *pipeline.Coordinator, writer *index.Writer, embedder embed.Embedder, embedStats *embed.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		coordinator:  coord,
		writer:       writer,
		embedder:     embedder,
		embedStats:   embedStats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/ingest", s.handleIngest)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)
		r.Post("/api/ingest/batch", s.handleBatchIngest)

		r.Get("/api/search", s.handleSearch)

		r.Delete("/api/documents", s.handleDeleteDocuments)
		r.Delete("/api/corpus", s.handleDeleteCorpus)
		r.Get("/api/documents/sample", s.handleSample)
		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
