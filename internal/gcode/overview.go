package gcode

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
)

// Bounds of the stored-reading scan behind Overview.
var (
	overviewFrom = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	overviewTo   = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
)

// Overview is the dashboard summary of one user's stored readings.
type Overview struct {
	User *domain.User
	// Today is nil until today's reading has been computed.
	Today *domain.DailyGCode
	// Upcoming holds stored readings from today through today+ForecastDays.
	Upcoming      []*domain.DailyGCode
	TotalReadings int
	AverageScore  float64 // rounded to one decimal, 0 without readings
}

// Overview summarizes what is already stored for a user. It never computes
// a reading.
func (s *Service) Overview(ctx context.Context, userID uuid.UUID) (*Overview, error) {
	u, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	readings, err := s.stores.DailyGCodes.GetByDateRange(ctx, userID, overviewFrom, overviewTo)
	if err != nil {
		return nil, fmt.Errorf("get daily g-codes: %w", err)
	}

	today := s.Today()
	horizon := today.AddDate(0, 0, ForecastDays)

	out := &Overview{User: u, TotalReadings: len(readings), Upcoming: []*domain.DailyGCode{}}
	total := 0
	for _, g := range readings {
		total += g.Score
		if g.TransitDate.Equal(today) {
			out.Today = g
		}
		if !g.TransitDate.Before(today) && !g.TransitDate.After(horizon) {
			out.Upcoming = append(out.Upcoming, g)
		}
	}
	if len(readings) > 0 {
		out.AverageScore = math.Round(float64(total)/float64(len(readings))*10) / 10
	}
	return out, nil
}
