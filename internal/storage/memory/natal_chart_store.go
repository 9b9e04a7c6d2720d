package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// NatalChartStore is an in-memory implementation of storage.NatalChartStore.
type NatalChartStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*domain.NatalChartRecord // keyed by user id
}

// NewNatalChartStore creates a new in-memory natal chart store.
func NewNatalChartStore() *NatalChartStore {
	return &NatalChartStore{
		data: make(map[uuid.UUID]*domain.NatalChartRecord),
	}
}

// Upsert stores the chart for rec.UserID, replacing any previous one.
func (s *NatalChartStore) Upsert(_ context.Context, rec *domain.NatalChartRecord) error {
	if rec == nil || rec.UserID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneNatalChartRecord(rec)
	if old, exists := s.data[rec.UserID]; exists && stored.CalculatedAt == 0 {
		stored.CalculatedAt = old.CalculatedAt
	}
	s.data[rec.UserID] = stored
	return nil
}

// GetByUserID retrieves the chart of a user. Returns ErrNotFound if not exists.
func (s *NatalChartStore) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.NatalChartRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.data[userID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneNatalChartRecord(rec), nil
}

// Delete removes the chart of a user.
func (s *NatalChartStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, userID)
	return nil
}

// Verify interface compliance at compile time.
var _ storage.NatalChartStore = (*NatalChartStore)(nil)
