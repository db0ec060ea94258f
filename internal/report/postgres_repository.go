package report

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutriadvisor/nutriadvisor/internal/nutrition"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
// Biometric input and analysis are stored as JSONB documents.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL health report repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const reportColumns = `
	id, user_id, input, analysis, status, error_detail,
	processed_at, processing_time_ms, created_at, updated_at
`

// Get retrieves a report by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*HealthReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM health_reports
		WHERE id = $1
	`

	return r.scanReport(r.pool.QueryRow(ctx, query, id))
}

// GetByUserAndID retrieves a report by user ID and report ID.
func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, reportID string) (*HealthReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM health_reports
		WHERE id = $1 AND user_id = $2
	`

	return r.scanReport(r.pool.QueryRow(ctx, query, reportID, userID))
}

// Latest retrieves the most recently created report for a user.
func (r *PostgresRepository) Latest(ctx context.Context, userID string) (*HealthReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM health_reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanReport(r.pool.QueryRow(ctx, query, userID))
}

// scanReport scans a report from a single row.
func (r *PostgresRepository) scanReport(row pgx.Row) (*HealthReport, error) {
	var (
		report       HealthReport
		inputJSON    []byte
		analysisJSON []byte
	)

	err := row.Scan(
		&report.ID,
		&report.UserID,
		&inputJSON,
		&analysisJSON,
		&report.Status,
		&report.ErrorDetail,
		&report.ProcessedAt,
		&report.ProcessingTimeMs,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(inputJSON, &report.Input); err != nil {
		return nil, err
	}
	if analysisJSON != nil {
		var analysis nutrition.Analysis
		if err := json.Unmarshal(analysisJSON, &analysis); err != nil {
			return nil, err
		}
		report.Analysis = &analysis
	}

	return &report, nil
}

// List retrieves reports for a user, newest first, with pagination.
func (r *PostgresRepository) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT ` + reportColumns + `
		FROM health_reports
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::text IS NULL OR status = $3)
		  AND ($4::text IS NULL OR created_at < (
		      SELECT created_at FROM health_reports WHERE id = $4
		  ))
		ORDER BY created_at DESC
		LIMIT $5
	`

	var since interface{}
	if !opts.Since.IsZero() {
		since = opts.Since
	}
	var status interface{}
	if opts.Status != "" {
		status = string(opts.Status)
	}
	var cursor interface{}
	if opts.Cursor != "" {
		cursor = opts.Cursor
	}

	rows, err := r.pool.Query(ctx, query, userID, since, status, cursor, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports, err := r.collectReports(rows)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Items: reports,
	}

	// If we got more results than the limit, there are more pages
	if len(reports) > limit {
		result.Items = reports[:limit]
		result.NextCursor = reports[limit-1].ID
	}

	return result, nil
}

// ListByStatus retrieves up to limit reports in the given state, oldest first.
func (r *PostgresRepository) ListByStatus(ctx context.Context, status Status, limit int) ([]*HealthReport, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + reportColumns + `
		FROM health_reports
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectReports(rows)
}

// collectReports scans all rows into reports.
func (r *PostgresRepository) collectReports(rows pgx.Rows) ([]*HealthReport, error) {
	var reports []*HealthReport
	for rows.Next() {
		report, err := r.scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}

// Create creates a new report.
func (r *PostgresRepository) Create(ctx context.Context, report *HealthReport) error {
	query := `
		INSERT INTO health_reports (
			id, user_id, input, analysis, status, error_detail,
			processed_at, processing_time_ms, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	inputJSON, analysisJSON, err := marshalReportDocs(report)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		report.ID,
		report.UserID,
		inputJSON,
		analysisJSON,
		string(report.Status),
		report.ErrorDetail,
		report.ProcessedAt,
		report.ProcessingTimeMs,
		report.CreatedAt,
		report.UpdatedAt,
	)
	return err
}

// Update updates an existing report.
func (r *PostgresRepository) Update(ctx context.Context, report *HealthReport) error {
	query := `
		UPDATE health_reports SET
			input = $2,
			analysis = $3,
			status = $4,
			error_detail = $5,
			processed_at = $6,
			processing_time_ms = $7,
			updated_at = $8
		WHERE id = $1
	`

	inputJSON, analysisJSON, err := marshalReportDocs(report)
	if err != nil {
		return err
	}

	result, err := r.pool.Exec(ctx, query,
		report.ID,
		inputJSON,
		analysisJSON,
		string(report.Status),
		report.ErrorDetail,
		report.ProcessedAt,
		report.ProcessingTimeMs,
		report.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrReportNotFound
	}

	return nil
}

// Delete deletes a report by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM health_reports WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// marshalReportDocs marshals the JSONB document columns.
func marshalReportDocs(report *HealthReport) ([]byte, []byte, error) {
	inputJSON, err := json.Marshal(report.Input)
	if err != nil {
		return nil, nil, err
	}

	var analysisJSON []byte
	if report.Analysis != nil {
		analysisJSON, err = json.Marshal(report.Analysis)
		if err != nil {
			return nil, nil, err
		}
	}

	return inputJSON, analysisJSON, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
