// Package enrichment defines the contract for the external natural-language
// computation service used to enrich nutrition results. The contract is
// deliberately loose: send a question, get back a short text or
// numeric-looking string, or an error. Callers own all fallback behavior.
package enrichment

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// Enrichment errors.
var (
	// ErrUnavailable indicates the provider could not be reached or
	// returned a failure response.
	ErrUnavailable = errors.New("enrichment provider unavailable")

	// ErrNoAnswer indicates the provider was reached but had no answer
	// for the question.
	ErrNoAnswer = errors.New("enrichment provider has no answer")

	// ErrEmptyAnswer indicates the provider returned an empty body.
	ErrEmptyAnswer = errors.New("enrichment provider returned empty answer")
)

// Provider answers a single natural-language question. Each call is
// independent: no batching, no session state.
type Provider interface {
	// Query sends one question and returns the short text answer.
	Query(ctx context.Context, question string) (string, error)

	// Name returns the provider name for logging.
	Name() string
}

// ParseNumber extracts the leading numeric value from a short answer such
// as "24.7 (body mass index)" or "about 1,905 dietary calories per day".
// A second return of false means the answer carries no usable number; this
// is absence of a value, not an error.
func ParseNumber(answer string) (float64, bool) {
	s := strings.TrimSpace(answer)
	s = strings.TrimPrefix(s, "about ")
	s = strings.TrimPrefix(s, "approximately ")
	s = strings.ReplaceAll(s, ",", "")

	end := 0
	seenDigit := false
	seenDot := false
loop:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
		case r == '.' && seenDigit && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break loop
		}
		end = i + 1
	}
	if !seenDigit {
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.TrimRight(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
