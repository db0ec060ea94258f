// Package api provides the HTTP API for NutriAdvisor.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/nutriadvisor/nutriadvisor/internal/api/handler"
	"github.com/nutriadvisor/nutriadvisor/internal/api/middleware"
	"github.com/nutriadvisor/nutriadvisor/internal/auth"
	"github.com/nutriadvisor/nutriadvisor/internal/featureflags"
	"github.com/nutriadvisor/nutriadvisor/internal/nutrition"
	"github.com/nutriadvisor/nutriadvisor/internal/provider/resilience"
	"github.com/nutriadvisor/nutriadvisor/internal/report"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	JWTService         *auth.JWTService
	Engine             *nutrition.Engine
	ReportService      *report.Service
	FeatureFlagService *featureflags.Service
	DB                 handler.Pinger
	ProviderRegistry   *resilience.Registry
	CORSOrigins        []string
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "nutriadvisor-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(corsHandler(cfg.CORSOrigins))    // Browser clients
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.ProviderRegistry)
	healthHandler := handler.NewHealthHandler(cfg.ReportService)
	nutritionHandler := handler.NewNutritionHandler(cfg.Engine, cfg.ReportService)
	historyHandler := handler.NewHistoryHandler(cfg.ReportService)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.JWTService)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByUser(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Health assessments (authenticated) - submissions run the full
		// enrichment pipeline, so they get the strict limit
		r.Route("/health", func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(expensiveRateLimit).Post("/assessment", healthHandler.CreateAssessment)
			r.With(standardRateLimit).Get("/latest", healthHandler.LatestAssessment)
			r.With(standardRateLimit).Get("/assessments", healthHandler.ListAssessments)
			r.With(standardRateLimit).Get("/assessment/{reportId}", healthHandler.GetAssessment)
		})

		// Nutrition computations (authenticated)
		r.Route("/nutrition", func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(standardRateLimit).Get("/results", nutritionHandler.Results)
			r.With(expensiveRateLimit).Post("/meal-plan", nutritionHandler.MealPlan)
			r.With(expensiveRateLimit).Post("/analyze", nutritionHandler.Analyze)
			r.With(standardRateLimit).Get("/recommendations", nutritionHandler.Recommendations)
			r.With(standardRateLimit).Post("/chart", nutritionHandler.Chart)
		})

		// Assessment history (authenticated)
		r.Route("/history", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/assessments", historyHandler.ListAssessments)
			r.Get("/progress", historyHandler.Progress)
			r.Delete("/assessment/{reportId}", historyHandler.DeleteAssessment)
		})

		// Admin endpoints (authenticated) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		})
	})

	return r
}

// corsHandler builds the CORS middleware. With no configured origins only
// the local development frontend is allowed.
func corsHandler(origins []string) func(next http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
