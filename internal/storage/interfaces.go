package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
)

// UserStore provides access to users storage.
type UserStore interface {
	// Create adds a new user. Returns ErrDuplicateKey if id or username exists.
	Create(ctx context.Context, u *domain.User) error

	// Update replaces an existing user. Returns ErrNotFound if not exists,
	// ErrDuplicateKey if the new username is taken.
	Update(ctx context.Context, u *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by username. Returns ErrNotFound if not exists.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List retrieves all users ordered by username ASC.
	List(ctx context.Context) ([]*domain.User, error)

	// ListDailyEnabled retrieves users with DailyGCodeEnabled, ordered by username ASC.
	ListDailyEnabled(ctx context.Context) ([]*domain.User, error)

	// Delete removes a user. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id uuid.UUID) error
}

// NatalChartStore provides access to natal_charts storage.
type NatalChartStore interface {
	// Upsert stores the chart for rec.UserID, replacing any previous one.
	Upsert(ctx context.Context, rec *domain.NatalChartRecord) error

	// GetByUserID retrieves the chart of a user. Returns ErrNotFound if not exists.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.NatalChartRecord, error)

	// Delete removes the chart of a user. Deleting a missing chart is not an error.
	Delete(ctx context.Context, userID uuid.UUID) error
}

// DailyGCodeStore provides access to daily_gcodes storage.
type DailyGCodeStore interface {
	// Upsert stores the reading for (UserID, TransitDate), replacing any previous one.
	Upsert(ctx context.Context, g *domain.DailyGCode) error

	// Get retrieves one reading. Returns ErrNotFound if not exists.
	Get(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyGCode, error)

	// GetByDateRange retrieves readings of a user within [start, end] (inclusive),
	// ordered by transit date ASC.
	GetByDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.DailyGCode, error)

	// DeleteBefore removes readings with transit date strictly before cutoff.
	// Returns the number of removed readings.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteByUser removes every reading of a user. Returns the number removed.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ScoreHistoryStore provides access to score_history storage.
type ScoreHistoryStore interface {
	// InsertBulk appends score points.
	InsertBulk(ctx context.Context, points []*domain.ScorePoint) error

	// GetByUser retrieves points of a user within [start, end] (inclusive),
	// ordered by transit date ASC. Later samples for the same date win.
	GetByUser(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.ScorePoint, error)
}

// Stores bundles every store the application needs.
type Stores struct {
	Users        UserStore
	NatalCharts  NatalChartStore
	DailyGCodes  DailyGCodeStore
	ScoreHistory ScoreHistoryStore
	JobProgress  JobProgressStore
}
