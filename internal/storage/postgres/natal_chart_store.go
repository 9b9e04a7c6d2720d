package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// NatalChartStore implements storage.NatalChartStore using PostgreSQL.
// The chart is stored as JSONB; sun, moon and ascendant signs are duplicated
// into columns for querying.
type NatalChartStore struct {
	pool *Pool
}

// NewNatalChartStore creates a new NatalChartStore.
func NewNatalChartStore(pool *Pool) *NatalChartStore {
	return &NatalChartStore{pool: pool}
}

// Compile-time interface check.
var _ storage.NatalChartStore = (*NatalChartStore)(nil)

// Upsert stores the chart for rec.UserID, replacing any previous one.
// A zero CalculatedAt keeps the stored value.
func (s *NatalChartStore) Upsert(ctx context.Context, rec *domain.NatalChartRecord) error {
	if rec == nil || rec.UserID == uuid.Nil {
		return storage.ErrInvalidInput
	}

	chart, err := json.Marshal(rec.Chart)
	if err != nil {
		return fmt.Errorf("encode natal chart: %w", err)
	}

	query := `
		INSERT INTO natal_charts (
			user_id, fingerprint, sun_sign, moon_sign, ascendant, chart, calculated_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			fingerprint   = EXCLUDED.fingerprint,
			sun_sign      = EXCLUDED.sun_sign,
			moon_sign     = EXCLUDED.moon_sign,
			ascendant     = EXCLUDED.ascendant,
			chart         = EXCLUDED.chart,
			calculated_at = CASE WHEN EXCLUDED.calculated_at = 0
			                     THEN natal_charts.calculated_at
			                     ELSE EXCLUDED.calculated_at END,
			updated_at    = EXCLUDED.updated_at
	`

	_, err = s.pool.Exec(ctx, query,
		rec.UserID,
		rec.Fingerprint,
		string(rec.Chart.SunSign),
		string(rec.Chart.MoonSign),
		string(rec.Chart.Ascendant),
		chart,
		rec.CalculatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		if isConstraintError(err) {
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
		return fmt.Errorf("upsert natal chart: %w", err)
	}
	return nil
}

// GetByUserID retrieves the chart of a user. Returns ErrNotFound if not exists.
func (s *NatalChartStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.NatalChartRecord, error) {
	query := `
		SELECT user_id, fingerprint, chart, calculated_at, updated_at
		FROM natal_charts
		WHERE user_id = $1
	`

	var rec domain.NatalChartRecord
	var chart []byte
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID,
		&rec.Fingerprint,
		&chart,
		&rec.CalculatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get natal chart: %w", err)
	}

	if err := json.Unmarshal(chart, &rec.Chart); err != nil {
		return nil, fmt.Errorf("decode natal chart: %w", err)
	}
	return &rec, nil
}

// Delete removes the chart of a user.
func (s *NatalChartStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM natal_charts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete natal chart: %w", err)
	}
	return nil
}
