package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/upb/proof-layer/app"
	"github.com/upb/proof-layer/handlers"
	"github.com/upb/proof-layer/middleware"
	"github.com/upb/proof-layer/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	logger := deps.Logger

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestContext(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(deps.Store, logger)
	presign := handlers.NewPresignHandler(deps.Upload, logger)
	ask := handlers.NewAskHandler(deps.Ask, logger)
	documents := handlers.NewDocumentHandler(deps.Ingest, logger)

	// Health check endpoints
	r.Get("/health", health.HandleHealth)
	r.Get("/healthz", health.HandleLiveness)
	r.Get("/readyz", health.HandleReadiness)

	r.Post("/presign", presign.HandlePresign)
	r.Post("/ask", ask.HandleAsk)
	r.Get("/traces/{trace_id}/documents", documents.HandleGetByTrace)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
