// Package worker provides background job processing for NutriAdvisor.
package worker

import (
	"time"
)

// ReprocessConfig holds configuration for the report reprocessing job.
type ReprocessConfig struct {
	// BatchSize is the maximum number of stuck reports fetched per run.
	// Default: 50
	BatchSize int

	// Concurrency is the number of concurrent reprocess operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for reprocessing a single report.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultReprocessConfig returns the default reprocess configuration.
func DefaultReprocessConfig() ReprocessConfig {
	return ReprocessConfig{
		BatchSize:   50,
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// withDefaults fills in zero-valued fields.
func (c ReprocessConfig) withDefaults() ReprocessConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}
