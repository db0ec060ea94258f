// Package report provides health report persistence and history services.
package report

import (
	"errors"
	"time"

	"github.com/nutriadvisor/nutriadvisor/internal/nutrition"
)

// Repository errors.
var (
	ErrReportNotFound = errors.New("health report not found")
)

// Status is the processing state of a health report.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Valid reports whether s is one of the known report statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusError:
		return true
	}
	return false
}

// HealthReport is a stored health assessment: the submitted biometrics plus
// the computed analysis. Analysis is nil until processing completes.
type HealthReport struct {
	ID               string                   `json:"id"`
	UserID           string                   `json:"-"`
	Input            nutrition.BiometricInput `json:"input"`
	Analysis         *nutrition.Analysis      `json:"analysis,omitempty"`
	Status           Status                   `json:"status"`
	ErrorDetail      string                   `json:"errorDetail,omitempty"`
	ProcessedAt      *time.Time               `json:"processedAt,omitempty"`
	ProcessingTimeMs int64                    `json:"processingTimeMs,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

// Summary is the list view of a health report.
type Summary struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	WeightKg  float64   `json:"weight"`
	BMI       float64   `json:"bmi,omitempty"`
	Calories  float64   `json:"calories,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Timeframe selects how far back a progress series reaches.
type Timeframe string

const (
	Timeframe1Month  Timeframe = "1month"
	Timeframe3Months Timeframe = "3months"
	Timeframe6Months Timeframe = "6months"
	Timeframe1Year   Timeframe = "1year"
)

// Valid reports whether t is one of the supported timeframes.
func (t Timeframe) Valid() bool {
	switch t {
	case Timeframe1Month, Timeframe3Months, Timeframe6Months, Timeframe1Year:
		return true
	}
	return false
}

// Duration returns the lookback window for the timeframe.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case Timeframe1Month:
		return 30 * 24 * time.Hour
	case Timeframe6Months:
		return 182 * 24 * time.Hour
	case Timeframe1Year:
		return 365 * 24 * time.Hour
	default:
		return 91 * 24 * time.Hour
	}
}

// ProgressPoint is one completed assessment projected onto the progress
// time series.
type ProgressPoint struct {
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight"`
	BMI      float64   `json:"bmi"`
	Calories float64   `json:"calories"`
	ProteinG float64   `json:"protein"`
	CarbsG   float64   `json:"carbs"`
	FatsG    float64   `json:"fats"`
}

// Progress is the weight and intake history over a timeframe, oldest first.
type Progress struct {
	Timeframe Timeframe       `json:"timeframe"`
	Points    []ProgressPoint `json:"dataPoints"`
}
