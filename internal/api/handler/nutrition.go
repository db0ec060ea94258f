package handler

import (
	"encoding/json"
	"net/http"

	"github.com/nutriadvisor/nutriadvisor/internal/api/response"
	"github.com/nutriadvisor/nutriadvisor/internal/nutrition"
	"github.com/nutriadvisor/nutriadvisor/internal/report"
)

// NutritionHandler handles nutrition computation endpoints. Endpoints that
// need biometric input read it from the user's most recent assessment.
type NutritionHandler struct {
	engine  *nutrition.Engine
	reports *report.Service
}

// NewNutritionHandler creates a new NutritionHandler.
func NewNutritionHandler(engine *nutrition.Engine, reports *report.Service) *NutritionHandler {
	return &NutritionHandler{engine: engine, reports: reports}
}

// latestInput loads the biometric input of the user's most recent assessment.
func (h *NutritionHandler) latestInput(w http.ResponseWriter, r *http.Request) (nutrition.BiometricInput, bool) {
	userID := GetUserID(r.Context())
	rpt, err := h.reports.Latest(r.Context(), userID)
	if err != nil {
		serviceError(w, r, err)
		return nutrition.BiometricInput{}, false
	}
	return rpt.Input, true
}

// Results handles GET /v1/nutrition/results - daily requirements recomputed
// from the latest assessment.
func (h *NutritionHandler) Results(w http.ResponseWriter, r *http.Request) {
	input, ok := h.latestInput(w, r)
	if !ok {
		return
	}

	requirements, err := h.engine.CalculateNutrition(r.Context(), input)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, requirements)
}

// MealPlan handles POST /v1/nutrition/meal-plan - a meal plan for previously
// computed requirements.
func (h *NutritionHandler) MealPlan(w http.ResponseWriter, r *http.Request) {
	var req nutrition.MealPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	plan, err := h.engine.GenerateMealPlan(r.Context(), req)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, plan)
}

// analyzeRequest is the body for POST /v1/nutrition/analyze.
type analyzeRequest struct {
	FoodItems []nutrition.FoodItem `json:"foodItems"`
}

// Analyze handles POST /v1/nutrition/analyze - per-item nutrition facts for
// a batch of foods.
func (h *NutritionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	analysis, err := h.engine.AnalyzeFood(r.Context(), req.FoodItems)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, analysis)
}

// Recommendations handles GET /v1/nutrition/recommendations - free-text
// insights for the latest assessment.
func (h *NutritionHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	input, ok := h.latestInput(w, r)
	if !ok {
		return
	}

	insights, err := h.engine.HealthInsights(r.Context(), input)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, insights)
}

// Chart handles POST /v1/nutrition/chart - a chart descriptor for nutrition
// or progress data.
func (h *NutritionHandler) Chart(w http.ResponseWriter, r *http.Request) {
	var req nutrition.ChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	chart, err := h.engine.ChartData(r.Context(), req)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, chart)
}
