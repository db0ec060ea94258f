package report

import (
	"context"
	"time"
)

// ListOptions contains options for listing health reports.
type ListOptions struct {
	Limit  int
	Cursor string
	// Since restricts results to reports created at or after this time.
	Since time.Time
	// Status restricts results to reports in this state. Empty means any.
	Status Status
}

// ListResult contains the results of listing health reports.
type ListResult struct {
	Items      []*HealthReport
	NextCursor string
}

// Repository defines the interface for health report persistence.
type Repository interface {
	// Get retrieves a report by ID.
	Get(ctx context.Context, id string) (*HealthReport, error)

	// GetByUserAndID retrieves a report by user ID and report ID.
	// Returns ErrReportNotFound if the report doesn't exist or doesn't belong to the user.
	GetByUserAndID(ctx context.Context, userID, reportID string) (*HealthReport, error)

	// Latest retrieves the most recently created report for a user.
	Latest(ctx context.Context, userID string) (*HealthReport, error)

	// List retrieves reports for a user, newest first, with pagination.
	List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error)

	// ListByStatus retrieves up to limit reports in the given state across
	// all users, oldest first. Used by the reprocessing worker.
	ListByStatus(ctx context.Context, status Status, limit int) ([]*HealthReport, error)

	// Create creates a new report.
	Create(ctx context.Context, report *HealthReport) error

	// Update updates an existing report.
	Update(ctx context.Context, report *HealthReport) error

	// Delete deletes a report by ID.
	Delete(ctx context.Context, id string) error
}
