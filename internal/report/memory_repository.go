package report

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu      sync.RWMutex
	reports map[string]*HealthReport
}

// NewInMemoryRepository creates a new in-memory health report repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reports: make(map[string]*HealthReport),
	}
}

// Get retrieves a report by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*HealthReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}

	return copyReport(report), nil
}

// GetByUserAndID retrieves a report by user ID and report ID.
func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, reportID string) (*HealthReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[reportID]
	if !ok || report.UserID != userID {
		return nil, ErrReportNotFound
	}

	return copyReport(report), nil
}

// Latest retrieves the most recently created report for a user.
func (r *InMemoryRepository) Latest(_ context.Context, userID string) (*HealthReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *HealthReport
	for _, report := range r.reports {
		if report.UserID != userID {
			continue
		}
		if latest == nil || report.CreatedAt.After(latest.CreatedAt) {
			latest = report
		}
	}

	if latest == nil {
		return nil, ErrReportNotFound
	}
	return copyReport(latest), nil
}

// List retrieves reports for a user, newest first, with pagination.
func (r *InMemoryRepository) List(_ context.Context, userID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reports []*HealthReport
	for _, report := range r.reports {
		if report.UserID != userID {
			continue
		}
		if !opts.Since.IsZero() && report.CreatedAt.Before(opts.Since) {
			continue
		}
		if opts.Status != "" && report.Status != opts.Status {
			continue
		}
		reports = append(reports, copyReport(report))
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	if opts.Cursor != "" {
		reports = afterCursor(reports, opts.Cursor)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{
		Items: reports,
	}

	if len(reports) > limit {
		result.Items = reports[:limit]
		result.NextCursor = reports[limit-1].ID
	}

	return result, nil
}

// ListByStatus retrieves up to limit reports in the given state, oldest first.
func (r *InMemoryRepository) ListByStatus(_ context.Context, status Status, limit int) ([]*HealthReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var reports []*HealthReport
	for _, report := range r.reports {
		if report.Status == status {
			reports = append(reports, copyReport(report))
		}
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})

	if limit <= 0 {
		limit = 50
	}
	if len(reports) > limit {
		reports = reports[:limit]
	}

	return reports, nil
}

// Create creates a new report.
func (r *InMemoryRepository) Create(_ context.Context, report *HealthReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports[report.ID] = copyReport(report)
	return nil
}

// Update updates an existing report.
func (r *InMemoryRepository) Update(_ context.Context, report *HealthReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[report.ID]; !ok {
		return ErrReportNotFound
	}

	r.reports[report.ID] = copyReport(report)
	return nil
}

// Delete deletes a report by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.reports, id)
	return nil
}

// afterCursor returns the reports positioned after the cursor report in the
// sorted slice. An unknown cursor yields no results, matching the SQL
// behavior when the cursor report has been deleted.
func afterCursor(reports []*HealthReport, cursor string) []*HealthReport {
	for i, report := range reports {
		if report.ID == cursor {
			return reports[i+1:]
		}
	}
	return nil
}

// copyReport returns a copy detached from repository-held state.
func copyReport(report *HealthReport) *HealthReport {
	cpy := *report
	if report.Analysis != nil {
		analysis := *report.Analysis
		cpy.Analysis = &analysis
	}
	if report.ProcessedAt != nil {
		processedAt := *report.ProcessedAt
		cpy.ProcessedAt = &processedAt
	}
	return &cpy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
