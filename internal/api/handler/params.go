package handler

import (
	"net/http"
	"strconv"
)

const maxPageLimit = 100

// parseLimit reads the limit query parameter, clamped to [1, maxPageLimit].
func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return fallback
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
