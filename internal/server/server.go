// Package server provides the status HTTP server for the shellhook daemon.
//
// The reaction pipeline itself has no network surface; this server only
// exposes read-only operational state: configured reactors, executor command
// history, and a live SSE stream of reaction results.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shellhookapp/shellhook-server/internal/executor"
	"github.com/shellhookapp/shellhook-server/internal/http/response"
	"github.com/shellhookapp/shellhook-server/internal/reaction"
)

// HistoryProvider exposes the executor's retained command history.
type HistoryProvider interface {
	History() []executor.HistoryEntry
}

// Server holds dependencies for the status HTTP handlers.
type Server struct {
	reactors   []*reaction.Reactor
	history    HistoryProvider
	sseHandler http.Handler
	router     *chi.Mux
	logger     *slog.Logger
}

// NewServer creates the status server with all routes configured.
func NewServer(reactors []*reaction.Reactor, history HistoryProvider, sseHandler http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		reactors:   reactors,
		history:    history,
		sseHandler: sseHandler,
		router:     chi.NewRouter(),
		logger:     logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/reactors", s.handleListReactors)
		r.Get("/history", s.handleGetHistory)
		if s.sseHandler != nil {
			r.Get("/events", s.sseHandler.ServeHTTP)
		}
	})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{"status": "ok"}, s.logger)
}

// ReactorInfo is the wire representation of one configured reactor.
type ReactorInfo struct {
	PluginID         string   `json:"plugin_id"`
	CommandTemplates []string `json:"command_templates"`
	HasGenerator     bool     `json:"has_generator"`
}

func (s *Server) handleListReactors(w http.ResponseWriter, _ *http.Request) {
	infos := make([]ReactorInfo, 0, len(s.reactors))
	for _, r := range s.reactors {
		infos = append(infos, ReactorInfo{
			PluginID:         r.ID(),
			CommandTemplates: r.Templates(),
			HasGenerator:     r.HasGenerator(),
		})
	}
	response.Success(w, infos, s.logger)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, _ *http.Request) {
	if s.history == nil {
		response.Success(w, []executor.HistoryEntry{}, s.logger)
		return
	}
	response.Success(w, s.history.History(), s.logger)
}
