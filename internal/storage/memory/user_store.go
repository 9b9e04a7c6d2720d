package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu         sync.RWMutex
	data       map[uuid.UUID]*domain.User // keyed by id
	byUsername map[string]uuid.UUID
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		data:       make(map[uuid.UUID]*domain.User),
		byUsername: make(map[string]uuid.UUID),
	}
}

// Create adds a new user. Returns ErrDuplicateKey if id or username exists.
func (s *UserStore) Create(_ context.Context, u *domain.User) error {
	if u == nil || u.ID == uuid.Nil || u.Username == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[u.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, taken := s.byUsername[u.Username]; taken {
		return storage.ErrDuplicateKey
	}

	userCopy := *u
	s.data[u.ID] = &userCopy
	s.byUsername[u.Username] = u.ID
	return nil
}

// Update replaces an existing user.
func (s *UserStore) Update(_ context.Context, u *domain.User) error {
	if u == nil || u.ID == uuid.Nil || u.Username == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.data[u.ID]
	if !exists {
		return storage.ErrNotFound
	}
	if owner, taken := s.byUsername[u.Username]; taken && owner != u.ID {
		return storage.ErrDuplicateKey
	}

	delete(s.byUsername, old.Username)
	userCopy := *u
	s.data[u.ID] = &userCopy
	s.byUsername[u.Username] = u.ID
	return nil
}

// GetByID retrieves a user by ID. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	userCopy := *u
	return &userCopy, nil
}

// GetByUsername retrieves a user by username. Returns ErrNotFound if not exists.
func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byUsername[username]
	if !exists {
		return nil, storage.ErrNotFound
	}
	userCopy := *s.data[id]
	return &userCopy, nil
}

// List retrieves all users ordered by username ASC.
func (s *UserStore) List(_ context.Context) ([]*domain.User, error) {
	return s.filter(func(*domain.User) bool { return true }), nil
}

// ListDailyEnabled retrieves users with DailyGCodeEnabled, ordered by username ASC.
func (s *UserStore) ListDailyEnabled(_ context.Context) ([]*domain.User, error) {
	return s.filter(func(u *domain.User) bool { return u.DailyGCodeEnabled }), nil
}

func (s *UserStore) filter(keep func(*domain.User) bool) []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.User
	for _, u := range s.data {
		if keep(u) {
			userCopy := *u
			result = append(result, &userCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Username < result[j].Username
	})
	return result
}

// Delete removes a user. Returns ErrNotFound if not exists.
func (s *UserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}
	delete(s.byUsername, u.Username)
	delete(s.data, id)
	return nil
}

// Verify interface compliance at compile time.
var _ storage.UserStore = (*UserStore)(nil)
