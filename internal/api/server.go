package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/notegest/internal/config"
	"github.com/dgallion1/notegest/internal/enhance"
	"github.com/dgallion1/notegest/internal/llm"
	"github.com/dgallion1/notegest/internal/pipeline"
	"github.com/dgallion1/notegest/internal/trello"
)

// Server is the HTTP API server for notegest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	enhancer     *enhance.Enhancer
	llm          *llm.Client
	converter    *trello.Converter
	log          *slog.Logger
	cfg          config.Config

	// Bounds synchronous enhancements; batch jobs are bounded by the worker pool.
	inline chan struct{}
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, enh *enhance.Enhancer, client *llm.Client, conv *trello.Converter, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		enhancer:     enh,
		llm:          client,
		converter:    conv,
		log:          log,
		cfg:          cfg,
		inline:       make(chan struct{}, max(cfg.MaxConcurrentNotes, 1)),
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
		r.Use(AuthMiddleware(s.cfg.NotegestAPIKey, s.log))

		r.Post("/api/enhance", s.handleEnhance)
		r.Post("/api/enhance/batch", s.handleBatchEnhance)
		r.Get("/api/jobs/{jobID}/status", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/result", s.handleJobResult)

		r.Post("/api/outline", s.handleOutline)
		r.Post("/api/convert/trello", s.handleConvertTrello)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
