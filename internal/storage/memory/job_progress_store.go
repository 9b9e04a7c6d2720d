package memory

import (
	"context"
	"sync"

	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// JobProgressStore is an in-memory implementation of storage.JobProgressStore.
type JobProgressStore struct {
	mu   sync.RWMutex
	runs map[string]storage.JobProgress // keyed by job name
}

// NewJobProgressStore creates a new in-memory job progress store.
func NewJobProgressStore() *JobProgressStore {
	return &JobProgressStore{
		runs: make(map[string]storage.JobProgress),
	}
}

// GetLastRun returns the last completed run of job.
func (s *JobProgressStore) GetLastRun(_ context.Context, job string) (*storage.JobProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.runs[job]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

// SetLastRun records a completed run, replacing the previous one.
func (s *JobProgressStore) SetLastRun(_ context.Context, progress *storage.JobProgress) error {
	if progress == nil || progress.Job == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[progress.Job] = *progress
	return nil
}

// Verify interface compliance at compile time.
var _ storage.JobProgressStore = (*JobProgressStore)(nil)
