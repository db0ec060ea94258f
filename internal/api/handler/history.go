package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nutriadvisor/nutriadvisor/internal/api/response"
	"github.com/nutriadvisor/nutriadvisor/internal/report"
)

// HistoryHandler handles assessment history endpoints.
type HistoryHandler struct {
	reports *report.Service
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(reports *report.Service) *HistoryHandler {
	return &HistoryHandler{reports: reports}
}

// ListAssessments handles GET /v1/history/assessments - past report
// summaries, newest first.
func (h *HistoryHandler) ListAssessments(w http.ResponseWriter, r *http.Request) {
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

// Progress handles GET /v1/history/progress - the weight and intake series
// over a timeframe (1month, 3months, 6months, 1year).
func (h *HistoryHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	timeframe := report.Timeframe(r.URL.Query().Get("timeframe"))

	progress, err := h.reports.Progress(r.Context(), userID, timeframe)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, progress)
}

// DeleteAssessment handles DELETE /v1/history/assessment/{reportId}.
func (h *HistoryHandler) DeleteAssessment(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportId")
	if reportID == "" {
		response.BadRequest(w, r, "reportId is required", nil)
		return
	}

	userID := GetUserID(r.Context())
	if err := h.reports.Delete(r.Context(), userID, reportID); err != nil {
		serviceError(w, r, err)
		return
	}

	response.NoContent(w, r)
}
