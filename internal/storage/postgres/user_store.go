package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

const userColumns = `
	id, username, email, birth_date, birth_time, birth_location, timezone,
	preferred_tone, daily_gcode_enabled, email_notifications, created_at, updated_at
`

// Create adds a new user. Returns ErrDuplicateKey if id or username exists.
func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	if u == nil || u.ID == uuid.Nil || u.Username == "" {
		return storage.ErrInvalidInput
	}

	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, query,
		u.ID,
		u.Username,
		u.Email,
		u.BirthDate,
		u.BirthTime,
		u.BirthLocation,
		u.Timezone,
		string(u.PreferredTone),
		u.DailyGCodeEnabled,
		u.EmailNotifications,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Update replaces an existing user.
func (s *UserStore) Update(ctx context.Context, u *domain.User) error {
	if u == nil || u.ID == uuid.Nil || u.Username == "" {
		return storage.ErrInvalidInput
	}

	query := `
		UPDATE users SET
			username = $2, email = $3, birth_date = $4, birth_time = $5,
			birth_location = $6, timezone = $7, preferred_tone = $8,
			daily_gcode_enabled = $9, email_notifications = $10, updated_at = $11
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		u.ID,
		u.Username,
		u.Email,
		u.BirthDate,
		u.BirthTime,
		u.BirthLocation,
		u.Timezone,
		string(u.PreferredTone),
		u.DailyGCodeEnabled,
		u.EmailNotifications,
		u.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByID retrieves a user by ID. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByUsername retrieves a user by username. Returns ErrNotFound if not exists.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// List retrieves all users ordered by username ASC.
func (s *UserStore) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// ListDailyEnabled retrieves users with DailyGCodeEnabled, ordered by username ASC.
func (s *UserStore) ListDailyEnabled(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users
		WHERE daily_gcode_enabled ORDER BY username ASC`)
	if err != nil {
		return nil, fmt.Errorf("list daily enabled users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// Delete removes a user. Charts and readings go with it (ON DELETE CASCADE).
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanUser scans a single row into a User.
func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var tone string

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.BirthDate,
		&u.BirthTime,
		&u.BirthLocation,
		&u.Timezone,
		&tone,
		&u.DailyGCodeEnabled,
		&u.EmailNotifications,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.PreferredTone = domain.Tone(tone)
	return &u, nil
}

// scanUsers scans multiple rows into a slice of User.
func scanUsers(rows pgx.Rows) ([]*domain.User, error) {
	var users []*domain.User

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}

	return users, nil
}
