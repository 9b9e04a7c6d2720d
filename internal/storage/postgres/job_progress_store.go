package postgres

import (
	"context"
	"fmt"

	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// JobProgressStore is a PostgreSQL implementation of storage.JobProgressStore.
// One row per job in job_progress.
type JobProgressStore struct {
	pool *Pool
}

// NewJobProgressStore creates a new PostgreSQL job progress store.
func NewJobProgressStore(pool *Pool) *JobProgressStore {
	return &JobProgressStore{pool: pool}
}

// Compile-time interface check.
var _ storage.JobProgressStore = (*JobProgressStore)(nil)

// GetLastRun returns the last completed run of job.
func (s *JobProgressStore) GetLastRun(ctx context.Context, job string) (*storage.JobProgress, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT job, last_date, processed, failed, finished_at
		FROM job_progress
		WHERE job = $1
	`, job)

	var p storage.JobProgress
	if err := row.Scan(&p.Job, &p.LastDate, &p.Processed, &p.Failed, &p.FinishedAt); err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get job progress: %w", err)
	}
	return &p, nil
}

// SetLastRun records a completed run, replacing the previous one.
func (s *JobProgressStore) SetLastRun(ctx context.Context, progress *storage.JobProgress) error {
	if progress == nil || progress.Job == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO job_progress (job, last_date, processed, failed, finished_at)
		VALUES ($1, $2::date, $3, $4, $5)
		ON CONFLICT (job) DO UPDATE
		SET last_date   = EXCLUDED.last_date,
		    processed   = EXCLUDED.processed,
		    failed      = EXCLUDED.failed,
		    finished_at = EXCLUDED.finished_at
	`, progress.Job, dateOnly(progress.LastDate), progress.Processed, progress.Failed, progress.FinishedAt)
	if err != nil {
		return fmt.Errorf("set job progress: %w", err)
	}
	return nil
}
