package gcode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// ForecastDays is the length of a weekly forecast.
const ForecastDays = 7

// WeeklyForecast computes ForecastDays consecutive readings starting at start.
// Readings are computed concurrently and returned in date order.
func (s *Service) WeeklyForecast(ctx context.Context, userID uuid.UUID, start time.Time) ([]*domain.DailyGCode, error) {
	if start.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", astro.ErrInvalidInput)
	}
	u, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	// Warm the natal chart once so the workers share it.
	if _, err := s.natalFor(ctx, u); err != nil {
		return nil, err
	}

	start = astro.CivilDate(start)
	out := make([]*domain.DailyGCode, ForecastDays)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := 0; i < ForecastDays; i++ {
		g.Go(func() error {
			day, err := s.dailyFor(gctx, u, start.AddDate(0, 0, i))
			if err != nil {
				return fmt.Errorf("day %d: %w", i, err)
			}
			out[i] = day
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// BatchResult summarizes one batch run.
type BatchResult struct {
	Date      time.Time
	Processed int
	Failed    int
	Errors    map[string]error // keyed by username
}

// BatchDaily computes the reading for date for every user with the daily
// G-Code enabled. A failing user is recorded and does not stop the batch.
func (s *Service) BatchDaily(ctx context.Context, date time.Time) (*BatchResult, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: batch date is required", astro.ErrInvalidInput)
	}
	users, err := s.stores.Users.ListDailyEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	result := &BatchResult{Date: astro.CivilDate(date), Errors: make(map[string]error)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, u := range users {
		g.Go(func() error {
			_, err := s.dailyFor(gctx, u, result.Date)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors[u.Username] = err
				s.logger.Printf("Warning: daily g-code failed for %s: %v", u.Username, err)
				return nil
			}
			result.Processed++
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	s.logger.Printf("Batch %s: %d processed, %d failed", result.Date.Format(time.DateOnly), result.Processed, result.Failed)
	return result, nil
}

// Cleanup removes daily readings older than retentionDays before today.
// Returns the number of removed readings.
func (s *Service) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("%w: retention must be positive, got %d", storage.ErrInvalidInput, retentionDays)
	}
	cutoff := s.Today().AddDate(0, 0, -retentionDays)
	n, err := s.stores.DailyGCodes.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete daily g-codes before %s: %w", cutoff.Format(time.DateOnly), err)
	}
	s.logger.Printf("Cleanup: removed %d readings before %s", n, cutoff.Format(time.DateOnly))
	return n, nil
}

// History returns the score trend of a user within [start, end].
// Without a score history store the stored readings are used.
func (s *Service) History(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.ScorePoint, error) {
	start, end = astro.CivilDate(start), astro.CivilDate(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", storage.ErrInvalidInput,
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	if _, err := s.stores.Users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if s.stores.ScoreHistory != nil {
		points, err := s.stores.ScoreHistory.GetByUser(ctx, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("get score history: %w", err)
		}
		return points, nil
	}

	readings, err := s.stores.DailyGCodes.GetByDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get daily g-codes: %w", err)
	}
	points := make([]*domain.ScorePoint, 0, len(readings))
	for _, g := range readings {
		points = append(points, &domain.ScorePoint{
			UserID:      g.UserID,
			TransitDate: g.TransitDate,
			Score:       g.Score,
			Level:       g.Level,
			AspectCount: len(g.Transits.Aspects),
			Engine:      g.Transits.NatalChart.Engine,
			RecordedAt:  g.CreatedAt,
		})
	}
	return points, nil
}

// errIsNotFound reports whether err is a missing-record error.
func errIsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
