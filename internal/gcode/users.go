package gcode

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// ValidateUser checks the user fields and birth data. An empty tone is set
// to the default.
func (s *Service) ValidateUser(u *domain.User) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", storage.ErrInvalidInput)
	}
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return fmt.Errorf("%w: username is required", storage.ErrInvalidInput)
	}
	if u.PreferredTone == "" {
		u.PreferredTone = domain.ToneInspiring
	}
	if !u.PreferredTone.IsValid() {
		return fmt.Errorf("%w: unknown tone %q", storage.ErrInvalidInput, u.PreferredTone)
	}
	if _, err := s.calc.Fingerprint(BirthData(u)); err != nil {
		return err
	}
	return nil
}

// CreateUser validates and stores a new user and computes the natal chart.
func (s *Service) CreateUser(ctx context.Context, u *domain.User) error {
	if err := s.ValidateUser(u); err != nil {
		return err
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := s.now().UnixMilli()
	u.CreatedAt, u.UpdatedAt = now, now

	if err := s.stores.Users.Create(ctx, u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if _, err := s.natalFor(ctx, u); err != nil {
		return fmt.Errorf("natal chart for new user: %w", err)
	}
	return nil
}

// UpdateUser validates and replaces a user. A changed birth data set makes
// the next natal chart request recompute the chart.
func (s *Service) UpdateUser(ctx context.Context, u *domain.User) error {
	if err := s.ValidateUser(u); err != nil {
		return err
	}
	existing, err := s.stores.Users.GetByID(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = s.now().UnixMilli()

	if err := s.stores.Users.Update(ctx, u); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// GetUser returns a user by ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := s.stores.Users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListUsers returns every user ordered by username.
func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.stores.Users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// DeleteUser removes a user with its chart and readings. Score history is
// append-only and kept.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	u, err := s.stores.Users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if fp, err := s.calc.Fingerprint(BirthData(u)); err == nil {
		s.natalCache.Remove(u.ID.String() + ":" + fp)
	}
	if _, err := s.stores.DailyGCodes.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("delete daily g-codes: %w", err)
	}
	if err := s.stores.NatalCharts.Delete(ctx, id); err != nil && !errIsNotFound(err) {
		return fmt.Errorf("delete natal chart: %w", err)
	}
	if err := s.stores.Users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
