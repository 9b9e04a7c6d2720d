package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

func testGCode(t *testing.T, u *domain.User, date time.Time) *domain.DailyGCode {
	t.Helper()

	calc, err := astro.NewCalculator()
	require.NoError(t, err)
	tr, err := calc.Transits(astro.BirthData{Date: u.BirthDate, Time: u.BirthTime, Location: u.BirthLocation}, date)
	require.NoError(t, err)

	score := calc.Intensity(tr.Planets, tr.Aspects)
	return &domain.DailyGCode{
		UserID:      u.ID,
		Username:    u.Username,
		TransitDate: date,
		Transits:    *tr,
		Score:       score,
		Level:       domain.LevelForScore(score),
		Interpretation: domain.Interpretation{
			Themes:            []string{"#AquariusSeason", "#LeoEnergy"},
			Interpretation:    "text",
			Affirmation:       "affirmation",
			PracticalGuidance: []string{"one", "two", "three"},
		},
		CreatedAt: time.Now().UnixMilli(),
	}
}

func TestDailyGCodeStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewDailyGCodeStore(pool)
	u := createTestUser(t, ctx, pool, "galen")

	g := testGCode(t, u, day(2024, 3, 20))
	require.NoError(t, store.Upsert(ctx, g))

	got, err := store.Get(ctx, u.ID, day(2024, 3, 20))
	require.NoError(t, err)
	assert.Equal(t, g.Score, got.Score)
	assert.Equal(t, g.Level, got.Level)
	assert.Equal(t, g.Interpretation, got.Interpretation)
	assert.Equal(t, len(g.Transits.Aspects), len(got.Transits.Aspects))
	assert.Equal(t, g.Transits.Planets.Bodies(), got.Transits.Planets.Bodies())
	assert.Equal(t, day(2024, 3, 20), got.TransitDate.UTC())

	g.Score = 1
	g.Level = domain.IntensityLow
	require.NoError(t, store.Upsert(ctx, g))
	got, err = store.Get(ctx, u.ID, day(2024, 3, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score)

	_, err = store.Get(ctx, u.ID, day(2024, 3, 21))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDailyGCodeStore_RejectsOutOfRangeScore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	u := createTestUser(t, ctx, pool, "galen")

	g := testGCode(t, u, day(2024, 3, 20))
	g.Score = 0
	assert.ErrorIs(t, NewDailyGCodeStore(pool).Upsert(ctx, g), storage.ErrInvalidInput)
}

func TestDailyGCodeStore_RangeAndCleanup(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewDailyGCodeStore(pool)
	a := createTestUser(t, ctx, pool, "alice")
	b := createTestUser(t, ctx, pool, "bob")

	for d := 1; d <= 7; d++ {
		require.NoError(t, store.Upsert(ctx, testGCode(t, a, day(2024, 3, d))))
		require.NoError(t, store.Upsert(ctx, testGCode(t, b, day(2024, 3, d))))
	}

	got, err := store.GetByDateRange(ctx, a.ID, day(2024, 3, 3), day(2024, 3, 5))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, day(2024, 3, 3), got[0].TransitDate.UTC())
	assert.Equal(t, day(2024, 3, 5), got[2].TransitDate.UTC())

	n, err := store.DeleteBefore(ctx, day(2024, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	n, err = store.DeleteByUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	// Deleting a user cascades to its readings
	require.NoError(t, NewUserStore(pool).Delete(ctx, a.ID))
	got, err = store.GetByDateRange(ctx, a.ID, day(2024, 1, 1), day(2024, 12, 31))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestJobProgressStore_SetAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewJobProgressStore(pool)

	_, err := store.GetLastRun(ctx, "daily_batch")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.SetLastRun(ctx, &storage.JobProgress{Job: "daily_batch", LastDate: day(2024, 3, 20), Processed: 10, FinishedAt: 1}))
	require.NoError(t, store.SetLastRun(ctx, &storage.JobProgress{Job: "daily_batch", LastDate: day(2024, 3, 21), Processed: 12, Failed: 1, FinishedAt: 2}))

	got, err := store.GetLastRun(ctx, "daily_batch")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 21), got.LastDate.UTC())
	assert.Equal(t, 12, got.Processed)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, int64(2), got.FinishedAt)
}
