package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nutriadvisor/nutriadvisor/internal/api/models"
	"github.com/nutriadvisor/nutriadvisor/internal/nutrition"
)

// AnalysisEngine produces the analysis stored in a report.
type AnalysisEngine interface {
	ProcessHealthData(ctx context.Context, in nutrition.BiometricInput) (*nutrition.Analysis, error)
}

// ServiceConfig holds configuration for the report service.
type ServiceConfig struct {
	Repository Repository
	Engine     AnalysisEngine
	Logger     zerolog.Logger
}

// Service provides health report operations.
type Service struct {
	repo   Repository
	engine AnalysisEngine
	logger zerolog.Logger
}

// NewService creates a new report service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		engine: cfg.Engine,
		logger: cfg.Logger,
	}
}

// newReportID generates a report identifier.
func newReportID() string {
	return "rpt_" + uuid.New().String()[:22]
}

// Create stores a pending report for the submitted biometrics, runs the
// analysis, and records the outcome. Invalid input is rejected before
// anything is stored. A computation failure leaves the report in the error
// state and the error propagates to the caller.
func (s *Service) Create(ctx context.Context, userID string, in nutrition.BiometricInput) (*HealthReport, error) {
	if fieldErrors := in.Validate(); len(fieldErrors) > 0 {
		return nil, &nutrition.ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	report := &HealthReport{
		ID:        newReportID(),
		UserID:    userID,
		Input:     in,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	if err := s.process(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

// process runs the engine for the report and records the outcome, moving the
// report from pending to completed or error.
func (s *Service) process(ctx context.Context, report *HealthReport) error {
	start := time.Now()
	analysis, err := s.engine.ProcessHealthData(ctx, report.Input)
	elapsed := time.Since(start)

	report.ProcessingTimeMs = elapsed.Milliseconds()
	report.UpdatedAt = time.Now()

	if err != nil {
		report.Status = StatusError
		report.ErrorDetail = err.Error()
		if updateErr := s.repo.Update(ctx, report); updateErr != nil {
			s.logger.Error().Err(updateErr).
				Str("report_id", report.ID).
				Msg("failed to record report error state")
		}
		return err
	}

	processedAt := time.Now()
	report.Analysis = analysis
	report.Status = StatusCompleted
	report.ErrorDetail = ""
	report.ProcessedAt = &processedAt

	return s.repo.Update(ctx, report)
}

// Latest retrieves the most recent report for a user.
func (s *Service) Latest(ctx context.Context, userID string) (*HealthReport, error) {
	return s.repo.Latest(ctx, userID)
}

// Get retrieves a report by ID for a user.
func (s *Service) Get(ctx context.Context, userID, reportID string) (*HealthReport, error) {
	return s.repo.GetByUserAndID(ctx, userID, reportID)
}

// PagedSummaries is a paginated list of report summaries.
type PagedSummaries struct {
	Items []Summary                `json:"items"`
	Meta  models.PagedResponseMeta `json:"meta"`
}

// List retrieves report summaries for a user, newest first. A non-empty
// cursor resumes after the report it names; the next cursor, when more
// results remain, is returned in the page meta.
func (s *Service) List(ctx context.Context, userID string, limit int, cursor string) (*PagedSummaries, error) {
	result, err := s.repo.List(ctx, userID, ListOptions{Limit: limit, Cursor: cursor})
	if err != nil {
		return nil, err
	}

	items := make([]Summary, 0, len(result.Items))
	for _, report := range result.Items {
		items = append(items, toSummary(report))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &PagedSummaries{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Delete deletes a report for a user.
func (s *Service) Delete(ctx context.Context, userID, reportID string) error {
	// Verify ownership
	if _, err := s.repo.GetByUserAndID(ctx, userID, reportID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, reportID)
}

// Progress builds the weight and intake time series for a user over the
// timeframe, oldest first. Only completed reports contribute points.
func (s *Service) Progress(ctx context.Context, userID string, timeframe Timeframe) (*Progress, error) {
	if timeframe == "" {
		timeframe = Timeframe3Months
	}
	if !timeframe.Valid() {
		return nil, &nutrition.ValidationError{Errors: []models.FieldError{
			{Field: "timeframe", Message: "must be one of: 1month, 3months, 6months, 1year"},
		}}
	}

	result, err := s.repo.List(ctx, userID, ListOptions{
		Limit:  500,
		Since:  time.Now().Add(-timeframe.Duration()),
		Status: StatusCompleted,
	})
	if err != nil {
		return nil, err
	}

	// List returns newest first; the series reads oldest first.
	points := make([]ProgressPoint, 0, len(result.Items))
	for i := len(result.Items) - 1; i >= 0; i-- {
		report := result.Items[i]
		if report.Analysis == nil {
			continue
		}
		points = append(points, ProgressPoint{
			Date:     report.CreatedAt,
			WeightKg: report.Input.WeightKg,
			BMI:      report.Analysis.BMI,
			Calories: report.Analysis.Calories,
			ProteinG: report.Analysis.ProteinG,
			CarbsG:   report.Analysis.CarbsG,
			FatsG:    report.Analysis.FatsG,
		})
	}

	return &Progress{
		Timeframe: timeframe,
		Points:    points,
	}, nil
}

// Reprocess re-runs the analysis for a stored report, regardless of owner.
// Used by the worker for reports stuck in pending or error.
func (s *Service) Reprocess(ctx context.Context, reportID string) (*HealthReport, error) {
	report, err := s.repo.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if err := s.process(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Int64("processing_time_ms", report.ProcessingTimeMs).
		Msg("report reprocessed")

	return report, nil
}

// StuckReports returns reports eligible for reprocessing, oldest first.
func (s *Service) StuckReports(ctx context.Context, limit int) ([]*HealthReport, error) {
	pending, err := s.repo.ListByStatus(ctx, StatusPending, limit)
	if err != nil {
		return nil, err
	}

	if len(pending) >= limit {
		return pending, nil
	}

	errored, err := s.repo.ListByStatus(ctx, StatusError, limit-len(pending))
	if err != nil {
		return nil, err
	}

	return append(pending, errored...), nil
}

// toSummary projects a report onto its list view.
func toSummary(report *HealthReport) Summary {
	summary := Summary{
		ID:        report.ID,
		Status:    report.Status,
		WeightKg:  report.Input.WeightKg,
		CreatedAt: report.CreatedAt,
	}
	if report.Analysis != nil {
		summary.BMI = report.Analysis.BMI
		summary.Calories = report.Analysis.Calories
	}
	return summary
}
