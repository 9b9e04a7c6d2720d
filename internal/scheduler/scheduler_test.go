package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galen-Chu/spiritual-g-code/internal/gcode"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage/memory"
)

type fakeJobs struct {
	mu        sync.Mutex
	today     time.Time
	batches   []time.Time
	cleanups  []int
	failed    int
	batchErr  error
	block     chan struct{}
	started   chan struct{}
	deleted   int64
	cleanupCt atomic.Int32
}

func (f *fakeJobs) BatchDaily(_ context.Context, date time.Time) (*gcode.BatchResult, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, date)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	return &gcode.BatchResult{Date: date, Processed: 3, Failed: f.failed}, nil
}

func (f *fakeJobs) Cleanup(_ context.Context, retentionDays int) (int64, error) {
	f.cleanupCt.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups = append(f.cleanups, retentionDays)
	return f.deleted, nil
}

func (f *fakeJobs) Today() time.Time { return f.today }

func (f *fakeJobs) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

var march20 = time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

func TestNew_RequiresJobs(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestRunDailyBatch_RecordsProgressAndSkipsFinishedDay(t *testing.T) {
	jobs := &fakeJobs{today: march20}
	progress := memory.NewJobProgressStore()
	s, err := New(Options{Jobs: jobs, Progress: progress})
	require.NoError(t, err)
	ctx := context.Background()

	ran, err := s.RunDailyBatch(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	p, err := progress.GetLastRun(ctx, JobDailyBatch)
	require.NoError(t, err)
	assert.Equal(t, march20, p.LastDate)
	assert.Equal(t, 3, p.Processed)

	ran, err = s.RunDailyBatch(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "finished day is skipped")
	assert.Equal(t, 1, jobs.batchCount())

	// A new day runs again
	jobs.today = march20.AddDate(0, 0, 1)
	ran, err = s.RunDailyBatch(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, jobs.batchCount())
}

func TestRunDailyBatch_RetriesDayWithFailures(t *testing.T) {
	jobs := &fakeJobs{today: march20, failed: 1}
	s, err := New(Options{Jobs: jobs, Progress: memory.NewJobProgressStore()})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.RunDailyBatch(ctx)
	require.NoError(t, err)
	ran, err := s.RunDailyBatch(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, jobs.batchCount())
}

func TestRunDailyBatch_Error(t *testing.T) {
	jobs := &fakeJobs{today: march20, batchErr: errors.New("store down")}
	progress := memory.NewJobProgressStore()
	s, err := New(Options{Jobs: jobs, Progress: progress})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.RunDailyBatch(ctx)
	assert.Error(t, err)

	_, err = progress.GetLastRun(ctx, JobDailyBatch)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, "store down", s.Status()[JobDailyBatch].LastError)
}

func TestRunDailyBatch_NoOverlap(t *testing.T) {
	jobs := &fakeJobs{today: march20, block: make(chan struct{}), started: make(chan struct{}, 1)}
	s, err := New(Options{Jobs: jobs})
	require.NoError(t, err)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.RunDailyBatch(ctx)
	}()
	<-jobs.started

	ran, err := s.RunDailyBatch(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "second run skipped while first is in progress")

	close(jobs.block)
	<-done
	assert.Equal(t, 1, jobs.batchCount())
}

func TestRunCleanup(t *testing.T) {
	jobs := &fakeJobs{today: march20, deleted: 7}
	progress := memory.NewJobProgressStore()
	s, err := New(Options{Jobs: jobs, Progress: progress, RetentionDays: 30})
	require.NoError(t, err)
	ctx := context.Background()

	n, err := s.RunCleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, []int{30}, jobs.cleanups)

	p, err := progress.GetLastRun(ctx, JobCleanup)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Processed)
	assert.Equal(t, 1, s.Status()[JobCleanup].Runs)
}

func TestRun_StartsBothJobsAndStops(t *testing.T) {
	jobs := &fakeJobs{today: march20}
	s, err := New(Options{Jobs: jobs, DailyInterval: time.Hour, CleanupInterval: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return jobs.batchCount() == 1 && jobs.cleanupCt.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestWithService(t *testing.T) {
	calc, err := newMockCalculator()
	require.NoError(t, err)
	stores := memory.NewStores()
	svc, err := gcode.NewService(gcode.ServiceOptions{
		Calculator: calc,
		Stores:     stores,
		Now:        func() time.Time { return march20.Add(9 * time.Hour) },
	})
	require.NoError(t, err)

	ctx := context.Background()
	for _, name := range []string{"alice", "bob"} {
		u := domainUser(name)
		require.NoError(t, svc.CreateUser(ctx, u))
	}

	s, err := New(Options{Jobs: svc, Progress: stores.JobProgress})
	require.NoError(t, err)

	ran, err := s.RunDailyBatch(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	p, err := stores.JobProgress.GetLastRun(ctx, JobDailyBatch)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Processed)
	assert.Equal(t, 0, p.Failed)
}
