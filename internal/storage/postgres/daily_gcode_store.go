package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// DailyGCodeStore implements storage.DailyGCodeStore using PostgreSQL.
type DailyGCodeStore struct {
	pool *Pool
}

// NewDailyGCodeStore creates a new DailyGCodeStore.
func NewDailyGCodeStore(pool *Pool) *DailyGCodeStore {
	return &DailyGCodeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.DailyGCodeStore = (*DailyGCodeStore)(nil)

const dailyColumns = `
	user_id, transit_date, username, score, level, transits, interpretation, created_at
`

// dateOnly drops the clock so a DATE parameter never shifts across timezones.
func dateOnly(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// Upsert stores the reading for (UserID, TransitDate), replacing any previous one.
func (s *DailyGCodeStore) Upsert(ctx context.Context, g *domain.DailyGCode) error {
	if g == nil || g.UserID == uuid.Nil || g.TransitDate.IsZero() {
		return storage.ErrInvalidInput
	}

	transits, err := json.Marshal(g.Transits)
	if err != nil {
		return fmt.Errorf("encode transits: %w", err)
	}
	interpretation, err := json.Marshal(g.Interpretation)
	if err != nil {
		return fmt.Errorf("encode interpretation: %w", err)
	}

	query := `INSERT INTO daily_gcodes (` + dailyColumns + `)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, transit_date) DO UPDATE SET
			username       = EXCLUDED.username,
			score          = EXCLUDED.score,
			level          = EXCLUDED.level,
			transits       = EXCLUDED.transits,
			interpretation = EXCLUDED.interpretation,
			created_at     = EXCLUDED.created_at
	`

	_, err = s.pool.Exec(ctx, query,
		g.UserID,
		dateOnly(g.TransitDate),
		g.Username,
		g.Score,
		string(g.Level),
		transits,
		interpretation,
		g.CreatedAt,
	)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
		return fmt.Errorf("upsert daily gcode: %w", err)
	}
	return nil
}

// Get retrieves one reading. Returns ErrNotFound if not exists.
func (s *DailyGCodeStore) Get(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyGCode, error) {
	query := `SELECT ` + dailyColumns + ` FROM daily_gcodes
		WHERE user_id = $1 AND transit_date = $2::date`

	g, err := scanDailyGCode(s.pool.QueryRow(ctx, query, userID, dateOnly(date)))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get daily gcode: %w", err)
	}
	return g, nil
}

// GetByDateRange retrieves readings of a user within [start, end] (inclusive).
func (s *DailyGCodeStore) GetByDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.DailyGCode, error) {
	query := `SELECT ` + dailyColumns + ` FROM daily_gcodes
		WHERE user_id = $1 AND transit_date >= $2::date AND transit_date <= $3::date
		ORDER BY transit_date ASC`

	rows, err := s.pool.Query(ctx, query, userID, dateOnly(start), dateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("get daily gcodes by date range: %w", err)
	}
	defer rows.Close()

	var result []*domain.DailyGCode
	for rows.Next() {
		g, err := scanDailyGCode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily gcode row: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily gcode rows: %w", err)
	}
	return result, nil
}

// DeleteBefore removes readings with transit date strictly before cutoff.
func (s *DailyGCodeStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM daily_gcodes WHERE transit_date < $1::date`, dateOnly(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete old daily gcodes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByUser removes every reading of a user.
func (s *DailyGCodeStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM daily_gcodes WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete daily gcodes of user: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanDailyGCode scans a single row into a DailyGCode.
func scanDailyGCode(row pgx.Row) (*domain.DailyGCode, error) {
	var g domain.DailyGCode
	var level string
	var transits, interpretation []byte

	err := row.Scan(
		&g.UserID,
		&g.TransitDate,
		&g.Username,
		&g.Score,
		&level,
		&transits,
		&interpretation,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.Level = domain.IntensityLevel(level)
	if err := json.Unmarshal(transits, &g.Transits); err != nil {
		return nil, fmt.Errorf("decode transits: %w", err)
	}
	if err := json.Unmarshal(interpretation, &g.Interpretation); err != nil {
		return nil, fmt.Errorf("decode interpretation: %w", err)
	}
	return &g, nil
}
