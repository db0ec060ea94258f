// Package main provides the entrypoint for the NutriAdvisor worker. The
// worker re-runs the analysis for health reports stuck in pending or error,
// driven by Pub/Sub messages or a local timer.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/nutriadvisor/nutriadvisor/internal/database"
	"github.com/nutriadvisor/nutriadvisor/internal/enrichment/wolfram"
	"github.com/nutriadvisor/nutriadvisor/internal/featureflags"
	"github.com/nutriadvisor/nutriadvisor/internal/nutrition"
	"github.com/nutriadvisor/nutriadvisor/internal/report"
	"github.com/nutriadvisor/nutriadvisor/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "nutriadvisor-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting NutriAdvisor worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Feature flags gate reprocessing at runtime
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository: featureflags.NewPostgresRepository(pool),
		Logger:     log,
		CacheTTL:   1 * time.Minute,
	})

	// The engine the reports are reprocessed with
	engineCfg := nutrition.EngineConfig{
		Flags:  ffService,
		Logger: log,
	}
	if appID := os.Getenv("WOLFRAM_APP_ID"); appID != "" {
		engineCfg.Provider = wolfram.NewClient(wolfram.ClientConfig{
			AppID:  appID,
			Logger: log,
		})
	}
	engine := nutrition.NewEngine(engineCfg)

	reportService := report.NewService(report.ServiceConfig{
		Repository: report.NewPostgresRepository(pool),
		Engine:     engine,
		Logger:     log,
	})

	reprocessJob := worker.NewReprocessJob(worker.ReprocessJobConfig{
		Config:  worker.DefaultReprocessConfig(),
		Logger:  log,
		Reports: reportService,
		Flags:   ffService,
	})

	// Create HTTP server for health checks
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Prefer Pub/Sub when configured, fall back to a local timer
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			ReprocessJob:     reprocessJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer func() {
			if closeErr := handler.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close pubsub handler")
			}
		}()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	} else {
		log.Info().Msg("pubsub not configured, running on local timer")
		go func() {
			ticker := time.NewTicker(reprocessInterval())
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					reprocessJob.Run(ctx)
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// reprocessInterval reads REPROCESS_INTERVAL, defaulting to 5 minutes.
func reprocessInterval() time.Duration {
	if raw := os.Getenv("REPROCESS_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return 5 * time.Minute
}
