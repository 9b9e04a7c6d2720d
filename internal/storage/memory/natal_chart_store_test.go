package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

func TestNatalChartStore_UpsertGetDelete(t *testing.T) {
	store := NewNatalChartStore()
	ctx := context.Background()
	userID := uuid.New()

	if _, err := store.GetByUserID(ctx, userID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rec := &domain.NatalChartRecord{
		UserID:      userID,
		Fingerprint: "fp1",
		Chart: astro.NatalChart{
			SunSign:   astro.Aquarius,
			ChartData: astro.ChartData{{Body: "sun", Position: astro.NewPosition(323.2)}},
		},
		CalculatedAt: 100,
	}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if got.Fingerprint != "fp1" || got.Chart.SunSign != astro.Aquarius {
		t.Errorf("unexpected record: %+v", got)
	}

	got.Chart.ChartData[0].Body = "mutated"
	again, _ := store.GetByUserID(ctx, userID)
	if again.Chart.ChartData[0].Body != "sun" {
		t.Error("store shares chart data with callers")
	}

	// Replacement keeps the original calculation time when none is given
	if err := store.Upsert(ctx, &domain.NatalChartRecord{UserID: userID, Fingerprint: "fp2"}); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	again, _ = store.GetByUserID(ctx, userID)
	if again.Fingerprint != "fp2" || again.CalculatedAt != 100 {
		t.Errorf("unexpected replacement: %+v", again)
	}

	if err := store.Delete(ctx, userID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByUserID(ctx, userID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestJobProgressStore(t *testing.T) {
	store := NewJobProgressStore()
	ctx := context.Background()

	if _, err := store.GetLastRun(ctx, "daily_batch"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_ = store.SetLastRun(ctx, &storage.JobProgress{Job: "daily_batch", LastDate: day(2024, 3, 20), Processed: 3})
	_ = store.SetLastRun(ctx, &storage.JobProgress{Job: "daily_batch", LastDate: day(2024, 3, 21), Processed: 4})

	got, err := store.GetLastRun(ctx, "daily_batch")
	if err != nil {
		t.Fatalf("GetLastRun failed: %v", err)
	}
	if !got.LastDate.Equal(day(2024, 3, 21)) || got.Processed != 4 {
		t.Errorf("unexpected progress: %+v", got)
	}

	if err := store.SetLastRun(ctx, &storage.JobProgress{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
