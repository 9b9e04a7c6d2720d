package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// ScoreHistoryStore is an in-memory implementation of storage.ScoreHistoryStore.
type ScoreHistoryStore struct {
	mu     sync.RWMutex
	points map[uuid.UUID][]domain.ScorePoint // keyed by user id, append order
}

// NewScoreHistoryStore creates a new in-memory score history store.
func NewScoreHistoryStore() *ScoreHistoryStore {
	return &ScoreHistoryStore{
		points: make(map[uuid.UUID][]domain.ScorePoint),
	}
}

// InsertBulk appends score points.
func (s *ScoreHistoryStore) InsertBulk(_ context.Context, points []*domain.ScorePoint) error {
	for _, p := range points {
		if p == nil || p.UserID == uuid.Nil || p.TransitDate.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		s.points[p.UserID] = append(s.points[p.UserID], *p)
	}
	return nil
}

// GetByUser retrieves points of a user within [start, end] (inclusive).
// Later samples for the same date replace earlier ones.
func (s *ScoreHistoryStore) GetByUser(_ context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.ScorePoint, error) {
	from, to := start.UTC().Format(time.DateOnly), end.UTC().Format(time.DateOnly)

	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]domain.ScorePoint)
	for _, p := range s.points[userID] {
		day := p.TransitDate.UTC().Format(time.DateOnly)
		if day < from || day > to {
			continue
		}
		if prev, ok := latest[day]; !ok || p.RecordedAt >= prev.RecordedAt {
			latest[day] = p
		}
	}

	result := make([]*domain.ScorePoint, 0, len(latest))
	for _, p := range latest {
		pointCopy := p
		result = append(result, &pointCopy)
	}

	// Sort by transit_date ASC
	sort.Slice(result, func(i, j int) bool {
		return result[i].TransitDate.Before(result[j].TransitDate)
	})
	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ScoreHistoryStore = (*ScoreHistoryStore)(nil)
