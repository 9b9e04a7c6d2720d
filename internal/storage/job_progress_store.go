package storage

import (
	"context"
	"time"
)

// JobProgress is the last completed run of a scheduled job.
type JobProgress struct {
	Job        string    // job name, e.g. "daily_batch"
	LastDate   time.Time // transit date the run covered (UTC midnight)
	Processed  int       // users processed successfully
	Failed     int       // users that failed
	FinishedAt int64     // Unix timestamp in milliseconds
}

// JobProgressStore provides persistence for scheduler state.
// This enables resumption after restarts without recomputing a finished day.
type JobProgressStore interface {
	// GetLastRun returns the last completed run of job.
	// Returns ErrNotFound if the job never completed.
	GetLastRun(ctx context.Context, job string) (*JobProgress, error)

	// SetLastRun records a completed run, replacing the previous one.
	SetLastRun(ctx context.Context, progress *JobProgress) error
}
