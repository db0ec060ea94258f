// Package main provides the entrypoint for the NutriAdvisor API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/nutriadvisor/nutriadvisor/internal/api"
	"github.com/nutriadvisor/nutriadvisor/internal/api/middleware"
	"github.com/nutriadvisor/nutriadvisor/internal/auth"
	"github.com/nutriadvisor/nutriadvisor/internal/database"
	"github.com/nutriadvisor/nutriadvisor/internal/enrichment/wolfram"
	"github.com/nutriadvisor/nutriadvisor/internal/featureflags"
	"github.com/nutriadvisor/nutriadvisor/internal/nutrition"
	"github.com/nutriadvisor/nutriadvisor/internal/provider/resilience"
	"github.com/nutriadvisor/nutriadvisor/internal/report"
	"github.com/nutriadvisor/nutriadvisor/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "nutriadvisor-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting NutriAdvisor API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})
	log.Info().Msg("jwt service initialized")

	// Initialize feature flags repository and service
	ffRepo := featureflags.NewPostgresRepository(pool)
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: ffRepo,
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})
	log.Info().Msg("feature flags service initialized")

	// Initialize the nutrition engine. Without a Wolfram app ID, every
	// answer comes from the formula library.
	engineCfg := nutrition.EngineConfig{
		Flags:  ffService,
		Logger: log,
	}
	wolframAppID := os.Getenv("WOLFRAM_APP_ID")
	if wolframAppID != "" {
		engineCfg.Provider = wolfram.NewClient(wolfram.ClientConfig{
			AppID:  wolframAppID,
			Logger: log,
		})
		log.Info().Msg("wolfram enrichment provider initialized")
	} else {
		log.Warn().Msg("WOLFRAM_APP_ID not set - enrichment disabled, formula fallback only")
	}
	engine := nutrition.NewEngine(engineCfg)
	log.Info().Msg("nutrition engine initialized")

	// Initialize report repository and service
	reportRepo := report.NewPostgresRepository(pool)
	reportService := report.NewService(report.ServiceConfig{
		Repository: reportRepo,
		Engine:     engine,
		Logger:     log,
	})
	log.Info().Msg("report service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		JWTService:         jwtService,
		Engine:             engine,
		ReportService:      reportService,
		FeatureFlagService: ffService,
		DB:                 pool,
		ProviderRegistry:   resilience.GlobalRegistry,
		CORSOrigins:        corsOriginsFromEnv(),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// corsOriginsFromEnv parses the comma-separated CORS_ORIGINS variable.
func corsOriginsFromEnv() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return nil
	}
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
