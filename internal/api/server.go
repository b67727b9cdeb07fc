// Package api provides the HTTP API server and handlers for MediaVault.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mediavault/mediavault-server/internal/service"
	"github.com/mediavault/mediavault-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	assets     *service.AssetService
	search     *service.SearchService
	activities *service.ActivityService
	health     HealthChecker
	validator  *validation.Validator
	router     *chi.Mux
	logger     *slog.Logger
}

// HealthChecker reports component health for the health endpoint. The DI
// container implements it over the store and search index.
type HealthChecker interface {
	CheckHealth() map[string]ComponentHealth
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(assets *service.AssetService, search *service.SearchService, activities *service.ActivityService, health HealthChecker, logger *slog.Logger) *Server {
	s := &Server{
		assets:     assets,
		search:     search,
		activities: activities,
		health:     health,
		validator:  validation.New(),
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

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
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
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", s.handleListAssets)
			r.Get("/{id}", s.handleGetAsset)
			r.Get("/{id}/status", s.handleGetAssetStatus)
			r.Post("/{id}/cancel", s.handleCancelAsset)
			r.Post("/{id}/retag", s.handleRetagAsset)
			r.Delete("/{id}/tags/{tagID}", s.handleDeleteAssetTag)
			r.Get("/{id}/activity", s.handleAssetActivity)
		})

		r.Route("/review", func(r chi.Router) {
			r.Get("/", s.handleListReviewQueue)
			r.Post("/{id}", s.handleReviewDecision)
		})

		r.Route("/search", func(r chi.Router) {
			r.Get("/", s.handleSearch)
			r.Post("/reindex", s.handleReindex)
		})

		r.Get("/activity", s.handleRecentActivity)
	})
}
