package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/observability"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// ScoreHistoryStore implements storage.ScoreHistoryStore using ClickHouse.
// The table is a ReplacingMergeTree on recorded_at, so reads use FINAL to see
// only the latest sample per (user_id, transit_date).
type ScoreHistoryStore struct {
	conn *Conn
}

// NewScoreHistoryStore creates a new ScoreHistoryStore.
func NewScoreHistoryStore(conn *Conn) *ScoreHistoryStore {
	return &ScoreHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScoreHistoryStore = (*ScoreHistoryStore)(nil)

// InsertBulk appends score points in one batch.
func (s *ScoreHistoryStore) InsertBulk(ctx context.Context, points []*domain.ScorePoint) (err error) {
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if p == nil || p.UserID == uuid.Nil || p.TransitDate.IsZero() || p.Score < 1 || p.Score > 100 {
			return storage.ErrInvalidInput
		}
	}

	start := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "insert", time.Since(start).Seconds(), err)
	}()

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO score_history (
			user_id, transit_date, score, level, aspect_count, engine, recorded_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.UserID, p.TransitDate.UTC(), uint8(p.Score), string(p.Level),
			uint16(p.AspectCount), p.Engine, uint64(p.RecordedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByUser retrieves points of a user within [start, end] (inclusive).
func (s *ScoreHistoryStore) GetByUser(ctx context.Context, userID uuid.UUID, start, end time.Time) (points []*domain.ScorePoint, err error) {
	began := time.Now()
	defer func() {
		observability.RecordDBQuery("clickhouse", "select", time.Since(began).Seconds(), err)
	}()

	query := `
		SELECT user_id, transit_date, score, level, aspect_count, engine, recorded_at
		FROM score_history FINAL
		WHERE user_id = ? AND transit_date >= toDate(?) AND transit_date <= toDate(?)
		ORDER BY transit_date ASC
	`

	rows, err := s.conn.Query(ctx, query, userID,
		start.UTC().Format(time.DateOnly), end.UTC().Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	return scanScorePoints(rows)
}

// scanScorePoints scans multiple rows.
func scanScorePoints(rows chRows) ([]*domain.ScorePoint, error) {
	var points []*domain.ScorePoint

	for rows.Next() {
		var p domain.ScorePoint
		var score uint8
		var level string
		var aspectCount uint16
		var recordedAt uint64

		err := rows.Scan(
			&p.UserID, &p.TransitDate, &score, &level,
			&aspectCount, &p.Engine, &recordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan score history row: %w", err)
		}

		p.TransitDate = p.TransitDate.UTC()
		p.Score = int(score)
		p.Level = domain.IntensityLevel(level)
		p.AspectCount = int(aspectCount)
		p.RecordedAt = int64(recordedAt)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score history rows: %w", err)
	}

	return points, nil
}
