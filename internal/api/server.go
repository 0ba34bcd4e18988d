package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pagemark-io/pagemark/internal/config"
	"github.com/pagemark-io/pagemark/internal/notion"
	"github.com/pagemark-io/pagemark/internal/pipeline"
)

// Server is the HTTP API server for pagemark.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	notion       *notion.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, nc *notion.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		notion:       nc,
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
		r.Use(AuthMiddleware(s.cfg.PagemarkAPIKey, s.log))

		r.Post("/api/publish", s.handlePublish)
		r.Post("/api/publish/file", s.handlePublishFile)
		r.Get("/api/publish/{jobID}/status", s.handlePublishStatus)

		r.Get("/api/pages", s.handleListPages)
		r.Delete("/api/pages/{pageID}", s.handleArchivePage)

		r.Get("/api/stats/notion", s.handleNotionStats)
		r.Get("/api/stats/queue", s.handleQueueStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
