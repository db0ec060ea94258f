package handler

import (
	"errors"
	"net/http"

	"github.com/nutriadvisor/nutriadvisor/internal/api/response"
	"github.com/nutriadvisor/nutriadvisor/internal/nutrition"
	"github.com/nutriadvisor/nutriadvisor/internal/report"
)

// serviceError maps domain errors onto problem+json responses.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *nutrition.ValidationError
	var computationErr *nutrition.ComputationError

	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, r, "validation failed", validationErr.Errors)
	case errors.As(err, &computationErr):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, report.ErrReportNotFound):
		response.NotFound(w, r, "report not found")
	default:
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
