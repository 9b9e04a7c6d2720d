// Package scheduler runs the daily G-Code batch and retention cleanup on
// fixed intervals.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/Galen-Chu/spiritual-g-code/internal/gcode"
	"github.com/Galen-Chu/spiritual-g-code/internal/observability"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// Job names, also used as JobProgressStore keys.
const (
	JobDailyBatch = "daily_batch"
	JobCleanup    = "cleanup"
)

// Jobs is the work the scheduler triggers. *gcode.Service implements it.
type Jobs interface {
	BatchDaily(ctx context.Context, date time.Time) (*gcode.BatchResult, error)
	Cleanup(ctx context.Context, retentionDays int) (int64, error)
	Today() time.Time
}

var _ Jobs = (*gcode.Service)(nil)

// Scheduler runs jobs on tickers. A job never overlaps with itself.
type Scheduler struct {
	jobs            Jobs
	progress        storage.JobProgressStore
	dailyInterval   time.Duration
	cleanupInterval time.Duration
	retentionDays   int
	now             func() time.Time
	logger          *log.Logger

	mu      sync.Mutex
	running map[string]bool
	status  map[string]JobStatus
}

// JobStatus is the in-process view of one job.
type JobStatus struct {
	Runs      int
	LastRun   time.Time
	LastError string
}

// Options contains configuration for creating a Scheduler.
type Options struct {
	Jobs            Jobs
	Progress        storage.JobProgressStore // Optional; enables skipping a finished day after restart
	DailyInterval   time.Duration            // Default: 1h
	CleanupInterval time.Duration            // Default: 24h
	RetentionDays   int                      // Default: 90
	Now             func() time.Time
	Logger          *log.Logger
}

// New creates a new Scheduler.
func New(opts Options) (*Scheduler, error) {
	if opts.Jobs == nil {
		return nil, errors.New("scheduler: jobs are required")
	}

	dailyInterval := opts.DailyInterval
	if dailyInterval <= 0 {
		dailyInterval = time.Hour
	}
	cleanupInterval := opts.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = 24 * time.Hour
	}
	retention := opts.RetentionDays
	if retention <= 0 {
		retention = 90
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Scheduler{
		jobs:            opts.Jobs,
		progress:        opts.Progress,
		dailyInterval:   dailyInterval,
		cleanupInterval: cleanupInterval,
		retentionDays:   retention,
		now:             now,
		logger:          logger,
		running:         make(map[string]bool),
		status:          make(map[string]JobStatus),
	}, nil
}

// Run starts both jobs immediately and then on their intervals.
// It blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Printf("Starting scheduler (daily: %v, cleanup: %v, retention: %d days)...",
		s.dailyInterval, s.cleanupInterval, s.retentionDays)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.loop(ctx, s.dailyInterval, func() { _, _ = s.RunDailyBatch(ctx) })
	}()
	go func() {
		defer wg.Done()
		s.loop(ctx, s.cleanupInterval, func() { _, _ = s.RunCleanup(ctx) })
	}()
	wg.Wait()
	return ctx.Err()
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, run func()) {
	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// RunDailyBatch computes today's readings for every enabled user. A day
// that already completed without failures is skipped. Returns false when
// the run was skipped.
func (s *Scheduler) RunDailyBatch(ctx context.Context) (bool, error) {
	if !s.acquire(JobDailyBatch) {
		s.logger.Println("Daily batch already running, skipping...")
		return false, nil
	}
	start := s.now()
	var err error
	defer func() { s.release(JobDailyBatch, start, err) }()

	date := s.jobs.Today()
	if s.progress != nil {
		last, getErr := s.progress.GetLastRun(ctx, JobDailyBatch)
		switch {
		case getErr == nil && last.LastDate.Equal(date) && last.Failed == 0:
			s.logger.Printf("Daily batch for %s already completed, skipping", date.Format(time.DateOnly))
			observability.RecordJobRun(JobDailyBatch, observability.StatusSkipped, s.now().Sub(start))
			return false, nil
		case getErr != nil && !errors.Is(getErr, storage.ErrNotFound):
			s.logger.Printf("Warning: failed to load daily batch progress: %v", getErr)
		}
	}

	s.logger.Printf("Running daily batch for %s...", date.Format(time.DateOnly))
	result, err := s.jobs.BatchDaily(ctx, date)
	if err != nil {
		s.logger.Printf("Daily batch error: %v", err)
		observability.RecordJobRun(JobDailyBatch, observability.StatusFailure, s.now().Sub(start))
		return true, err
	}

	if s.progress != nil {
		p := &storage.JobProgress{
			Job:        JobDailyBatch,
			LastDate:   date,
			Processed:  result.Processed,
			Failed:     result.Failed,
			FinishedAt: s.now().UnixMilli(),
		}
		if err = s.progress.SetLastRun(ctx, p); err != nil {
			err = fmt.Errorf("save daily batch progress: %w", err)
			s.logger.Printf("Warning: %v", err)
		}
	}

	status := observability.StatusSuccess
	if result.Failed > 0 {
		status = observability.StatusFailure
	}
	observability.RecordJobRun(JobDailyBatch, status, s.now().Sub(start))
	s.logger.Printf("Daily batch completed in %v: %d processed, %d failed",
		s.now().Sub(start), result.Processed, result.Failed)
	return true, err
}

// RunCleanup removes readings older than the retention window.
func (s *Scheduler) RunCleanup(ctx context.Context) (int64, error) {
	if !s.acquire(JobCleanup) {
		s.logger.Println("Cleanup already running, skipping...")
		return 0, nil
	}
	start := s.now()
	var err error
	defer func() { s.release(JobCleanup, start, err) }()

	n, err := s.jobs.Cleanup(ctx, s.retentionDays)
	if err != nil {
		s.logger.Printf("Cleanup error: %v", err)
		observability.RecordJobRun(JobCleanup, observability.StatusFailure, s.now().Sub(start))
		return 0, err
	}
	observability.RecordRecordsDeleted(n)
	observability.RecordJobRun(JobCleanup, observability.StatusSuccess, s.now().Sub(start))

	if s.progress != nil {
		p := &storage.JobProgress{
			Job:        JobCleanup,
			LastDate:   s.jobs.Today(),
			Processed:  int(n),
			FinishedAt: s.now().UnixMilli(),
		}
		if err = s.progress.SetLastRun(ctx, p); err != nil {
			err = fmt.Errorf("save cleanup progress: %w", err)
			s.logger.Printf("Warning: %v", err)
		}
	}
	return n, err
}

// Status returns a snapshot of every job that ran at least once.
func (s *Scheduler) Status() map[string]JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]JobStatus, len(s.status))
	for k, v := range s.status {
		out[k] = v
	}
	return out
}

func (s *Scheduler) acquire(job string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[job] {
		return false
	}
	s.running[job] = true
	return true
}

func (s *Scheduler) release(job string, start time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[job] = false

	st := s.status[job]
	st.Runs++
	st.LastRun = start
	st.LastError = ""
	if err != nil {
		st.LastError = err.Error()
	}
	s.status[job] = st
}
