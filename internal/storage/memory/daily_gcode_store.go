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

type dailyKey struct {
	userID uuid.UUID
	date   string // YYYY-MM-DD
}

func newDailyKey(userID uuid.UUID, date time.Time) dailyKey {
	return dailyKey{userID: userID, date: date.UTC().Format(time.DateOnly)}
}

// DailyGCodeStore is an in-memory implementation of storage.DailyGCodeStore.
type DailyGCodeStore struct {
	mu   sync.RWMutex
	data map[dailyKey]*domain.DailyGCode
}

// NewDailyGCodeStore creates a new in-memory daily G-Code store.
func NewDailyGCodeStore() *DailyGCodeStore {
	return &DailyGCodeStore{
		data: make(map[dailyKey]*domain.DailyGCode),
	}
}

// Upsert stores the reading for (UserID, TransitDate), replacing any previous one.
func (s *DailyGCodeStore) Upsert(_ context.Context, g *domain.DailyGCode) error {
	if g == nil || g.UserID == uuid.Nil || g.TransitDate.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[newDailyKey(g.UserID, g.TransitDate)] = cloneDailyGCode(g)
	return nil
}

// Get retrieves one reading. Returns ErrNotFound if not exists.
func (s *DailyGCodeStore) Get(_ context.Context, userID uuid.UUID, date time.Time) (*domain.DailyGCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, exists := s.data[newDailyKey(userID, date)]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneDailyGCode(g), nil
}

// GetByDateRange retrieves readings of a user within [start, end] (inclusive).
func (s *DailyGCodeStore) GetByDateRange(_ context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.DailyGCode, error) {
	from, to := start.UTC().Format(time.DateOnly), end.UTC().Format(time.DateOnly)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailyGCode
	for k, g := range s.data {
		if k.userID == userID && k.date >= from && k.date <= to {
			result = append(result, cloneDailyGCode(g))
		}
	}

	// Sort by transit_date ASC
	sort.Slice(result, func(i, j int) bool {
		return result[i].TransitDate.Before(result[j].TransitDate)
	})
	return result, nil
}

// DeleteBefore removes readings with transit date strictly before cutoff.
func (s *DailyGCodeStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	limit := cutoff.UTC().Format(time.DateOnly)

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k := range s.data {
		if k.date < limit {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

// DeleteByUser removes every reading of a user.
func (s *DailyGCodeStore) DeleteByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k := range s.data {
		if k.userID == userID {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

// Verify interface compliance at compile time.
var _ storage.DailyGCodeStore = (*DailyGCodeStore)(nil)
