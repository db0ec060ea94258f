package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutriadvisor/nutriadvisor/internal/featureflags"
	"github.com/nutriadvisor/nutriadvisor/internal/report"
)

// ReprocessJob re-runs the analysis for reports stuck in pending or error.
type ReprocessJob struct {
	config  ReprocessConfig
	logger  zerolog.Logger
	reports *report.Service
	flags   *featureflags.Service

	// Metrics
	metrics *ReprocessMetrics
}

// ReprocessMetrics tracks reprocess job statistics.
type ReprocessMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns       int64
	TotalReports    int64
	Successful      int64
	Failed          int64
	SkippedDisabled int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// ReprocessJobConfig holds configuration for creating a ReprocessJob.
type ReprocessJobConfig struct {
	Config  ReprocessConfig
	Logger  zerolog.Logger
	Reports *report.Service
	// Flags is optional; if provided, the disable_report_reprocessing
	// flag skips runs at runtime.
	Flags *featureflags.Service
}

// NewReprocessJob creates a new reprocess job processor.
func NewReprocessJob(cfg ReprocessJobConfig) *ReprocessJob {
	return &ReprocessJob{
		config:  cfg.Config.withDefaults(),
		logger:  cfg.Logger,
		reports: cfg.Reports,
		flags:   cfg.Flags,
		metrics: &ReprocessMetrics{},
	}
}

// ReprocessResult contains the result of one reprocess run.
type ReprocessResult struct {
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	TotalReports int
	Successful   int
	Failed       int
	Skipped      bool
	Errors       []ReprocessError
}

// ReprocessError represents an error while reprocessing one report.
type ReprocessError struct {
	ReportID string
	Error    string
}

// Run fetches a batch of stuck reports and re-runs the analysis for each.
func (j *ReprocessJob) Run(ctx context.Context) *ReprocessResult {
	return j.RunBatch(ctx, j.config.BatchSize)
}

// RunBatch runs the job with a batch size overriding the configured one.
// A non-positive size falls back to the configured batch size.
func (j *ReprocessJob) RunBatch(ctx context.Context, batchSize int) *ReprocessResult {
	if batchSize <= 0 {
		batchSize = j.config.BatchSize
	}

	startTime := time.Now()
	result := &ReprocessResult{StartTime: startTime}

	if j.flags.IsReportReprocessingDisabled(ctx) {
		j.logger.Info().Msg("report reprocessing disabled by feature flag, skipping run")
		result.Skipped = true
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		j.recordSkipped()
		return result
	}

	stuck, err := j.reports.StuckReports(ctx, batchSize)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to list stuck reports")
		result.Failed = 1
		result.Errors = append(result.Errors, ReprocessError{Error: err.Error()})
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		return result
	}

	result.TotalReports = len(stuck)

	j.logger.Info().
		Int("total_reports", result.TotalReports).
		Int("concurrency", j.config.Concurrency).
		Msg("starting report reprocess job")

	// Create work channels
	reportsChan := make(chan *report.HealthReport, len(stuck))
	resultsChan := make(chan reportResult, len(stuck))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.reprocessWorker(ctx, reportsChan, resultsChan)
		}()
	}

	// Send reports to workers
	for _, r := range stuck {
		reportsChan <- r
	}
	close(reportsChan)

	// Wait for workers to complete
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results
	for rr := range resultsChan {
		if rr.success {
			result.Successful++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, ReprocessError{
				ReportID: rr.reportID,
				Error:    rr.err,
			})
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	// Update metrics
	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("report reprocess job completed")

	return result
}

type reportResult struct {
	reportID string
	success  bool
	err      string
}

func (j *ReprocessJob) reprocessWorker(ctx context.Context, reports <-chan *report.HealthReport, results chan<- reportResult) {
	for r := range reports {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.reprocessReport(ctx, r)
		}
	}
}

func (j *ReprocessJob) reprocessReport(ctx context.Context, r *report.HealthReport) reportResult {
	reportCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if _, err := j.reports.Reprocess(reportCtx, r.ID); err != nil {
		j.logger.Warn().
			Err(err).
			Str("report_id", r.ID).
			Msg("report reprocess failed")
		return reportResult{reportID: r.ID, err: err.Error()}
	}

	return reportResult{reportID: r.ID, success: true}
}

func (j *ReprocessJob) recordSkipped() {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()
	j.metrics.TotalRuns++
	j.metrics.SkippedDisabled++
}

func (j *ReprocessJob) updateMetrics(result *ReprocessResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.TotalReports += int64(result.TotalReports)
	j.metrics.Successful += int64(result.Successful)
	j.metrics.Failed += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *ReprocessJob) GetMetrics() ReprocessMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return ReprocessMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		TotalReports:    j.metrics.TotalReports,
		Successful:      j.metrics.Successful,
		Failed:          j.metrics.Failed,
		SkippedDisabled: j.metrics.SkippedDisabled,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *ReprocessJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"total_reports":     m.TotalReports,
		"successful":        m.Successful,
		"failed":            m.Failed,
		"skipped_disabled":  m.SkippedDisabled,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
