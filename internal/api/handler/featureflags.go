package handler

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/nutriadvisor/nutriadvisor/internal/api/response"
	"github.com/nutriadvisor/nutriadvisor/internal/featureflags"
)

// FeatureFlagsHandler handles feature flag admin endpoints.
type FeatureFlagsHandler struct {
	service *featureflags.Service
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler.
func NewFeatureFlagsHandler(service *featureflags.Service) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service}
}

// ListFeatureFlags handles GET /v1/admin/flags - list all feature flags.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	flags := h.service.GetAllFlags(r.Context())

	items := make([]featureflags.Flag, 0, len(flags))
	for _, flag := range flags {
		items = append(items, *flag)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })

	response.JSON(w, r, http.StatusOK, featureflags.FlagList{Items: items})
}

// UpsertFeatureFlags handles PUT /v1/admin/flags - update feature flags.
func (h *FeatureFlagsHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var req featureflags.FlagUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if len(req.Updates) == 0 {
		response.BadRequest(w, r, "updates must not be empty", nil)
		return
	}

	now := time.Now()
	flags := make([]*featureflags.Flag, 0, len(req.Updates))
	for _, update := range req.Updates {
		if update.Key == "" {
			response.BadRequest(w, r, "flag key must not be empty", nil)
			return
		}
		flags = append(flags, &featureflags.Flag{
			Key:       update.Key,
			Value:     update.Value,
			UpdatedAt: now,
		})
	}

	if err := h.service.SetFlags(r.Context(), flags); err != nil {
		response.InternalError(w, r, "failed to update feature flags")
		return
	}

	response.NoContent(w, r)
}

// InvalidateCache handles POST /v1/admin/flags/invalidate - invalidate flag cache.
func (h *FeatureFlagsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}
