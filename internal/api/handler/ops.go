// Package handler provides HTTP handlers for the NutriAdvisor API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/nutriadvisor/nutriadvisor/internal/api/models"
	"github.com/nutriadvisor/nutriadvisor/internal/api/response"
	"github.com/nutriadvisor/nutriadvisor/internal/provider/resilience"
)

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	db        Pinger
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler. db and registry may be nil; the
// corresponding checks are skipped.
func NewOpsHandler(version, buildTime string, db Pinger, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		db:        db,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Fails when the
// database is unreachable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"database": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       now,
		Subsystems: []models.SubsystemStatus{},
		Providers:  []models.ProviderStatus{},
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		dbStatus := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
		if err := h.db.Ping(ctx); err != nil {
			detail := err.Error()
			dbStatus.Status = models.HealthStatusFail
			dbStatus.Detail = &detail
			status.Status = models.HealthStatusFail
		}
		cancel()
		status.Subsystems = append(status.Subsystems, dbStatus)
	}

	if h.registry != nil {
		for _, providerHealth := range h.registry.GetAllHealth() {
			provider := models.ProviderStatus{
				Provider: providerHealth.Name,
				Status:   models.HealthStatusOK,
			}
			switch {
			case providerHealth.IsUnhealthy():
				provider.Status = models.HealthStatusFail
				if status.Status == models.HealthStatusOK {
					status.Status = models.HealthStatusDegraded
				}
			case providerHealth.IsDegraded():
				provider.Status = models.HealthStatusDegraded
				if status.Status == models.HealthStatusOK {
					status.Status = models.HealthStatusDegraded
				}
			}
			if providerHealth.LastSuccessAt != nil {
				ts := models.Timestamp(*providerHealth.LastSuccessAt)
				provider.LastSuccessAt = &ts
			}
			if providerHealth.LastFailureAt != nil {
				ts := models.Timestamp(*providerHealth.LastFailureAt)
				provider.LastFailureAt = &ts
			}
			if providerHealth.LastError != "" {
				message := providerHealth.LastError
				provider.Message = &message
			}
			status.Providers = append(status.Providers, provider)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}
