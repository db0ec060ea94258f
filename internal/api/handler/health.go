package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nutriadvisor/nutriadvisor/internal/api/response"
	"github.com/nutriadvisor/nutriadvisor/internal/nutrition"
	"github.com/nutriadvisor/nutriadvisor/internal/report"
)

// HealthHandler handles health assessment endpoints.
type HealthHandler struct {
	reports *report.Service
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(reports *report.Service) *HealthHandler {
	return &HealthHandler{reports: reports}
}

// CreateAssessment handles POST /v1/health/assessment - submit biometric data
// for analysis.
func (h *HealthHandler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var input nutrition.BiometricInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	userID := GetUserID(r.Context())
	rpt, err := h.reports.Create(r.Context(), userID, input)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/health/assessment/%s", rpt.ID)
	response.Created(w, r, location, rpt)
}

// LatestAssessment handles GET /v1/health/latest - the most recent report.
func (h *HealthHandler) LatestAssessment(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	rpt, err := h.reports.Latest(r.Context(), userID)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, rpt)
}

// ListAssessments handles GET /v1/health/assessments - report summaries,
// newest first.
func (h *HealthHandler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	limit := parseLimit(r, 50)
	cursor := r.URL.Query().Get("cursor")

	summaries, err := h.reports.List(r.Context(), userID, limit, cursor)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, summaries)
}

// GetAssessment handles GET /v1/health/assessment/{reportId} - one report.
func (h *HealthHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportId")
	if reportID == "" {
		response.BadRequest(w, r, "reportId is required", nil)
		return
	}

	userID := GetUserID(r.Context())
	rpt, err := h.reports.Get(r.Context(), userID, reportID)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, rpt)
}
