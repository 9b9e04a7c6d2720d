// Package gcode computes, stores and publishes Daily G-Codes.
package gcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/observability"
	"github.com/Galen-Chu/spiritual-g-code/internal/storage"
)

// Notifier receives every freshly computed Daily G-Code.
type Notifier interface {
	NotifyDailyGCode(g *domain.DailyGCode)
}

// Service ties the calculator to the stores.
type Service struct {
	calc        astro.ChartCalculator
	stores      *storage.Stores
	interpreter Interpreter
	notifier    Notifier
	natalCache  *lru.Cache[string, domain.NatalChartRecord] // keyed by user ID and chart fingerprint
	workers     int
	now         func() time.Time
	logger      *log.Logger
}

// ServiceOptions contains configuration for creating a Service.
type ServiceOptions struct {
	Calculator  astro.ChartCalculator
	Stores      *storage.Stores
	Interpreter Interpreter // Default: ThemeInterpreter
	Notifier    Notifier    // Optional
	CacheSize   int         // Default: 1024 natal charts
	Workers     int         // Default: 4 - concurrent computations in forecasts and batches
	Now         func() time.Time
	Logger      *log.Logger
}

// NewService creates a new Service.
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Calculator == nil {
		return nil, errors.New("gcode: calculator is required")
	}
	if opts.Stores == nil || opts.Stores.Users == nil || opts.Stores.NatalCharts == nil || opts.Stores.DailyGCodes == nil {
		return nil, errors.New("gcode: user, natal chart and daily stores are required")
	}

	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[string, domain.NatalChartRecord](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create natal cache: %w", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	interpreter := opts.Interpreter
	if interpreter == nil {
		interpreter = ThemeInterpreter{}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Service{
		calc:        opts.Calculator,
		stores:      opts.Stores,
		interpreter: interpreter,
		notifier:    opts.Notifier,
		natalCache:  cache,
		workers:     workers,
		now:         now,
		logger:      logger,
	}, nil
}

// SetNotifier replaces the notifier. It must be called before the service
// is shared between goroutines.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Calculator returns the underlying chart calculator.
func (s *Service) Calculator() astro.ChartCalculator {
	return s.calc
}

// BirthData extracts the calculator input from a user.
func BirthData(u *domain.User) astro.BirthData {
	return astro.BirthData{
		Date:     u.BirthDate,
		Time:     u.BirthTime,
		Location: u.BirthLocation,
		Timezone: u.Timezone,
	}
}

// NatalChart returns the natal chart of a user. Charts are served from the
// cache, then from the store when the stored fingerprint still matches the
// user's birth data, and computed and persisted otherwise.
func (s *Service) NatalChart(ctx context.Context, userID uuid.UUID) (*domain.NatalChartRecord, error) {
	u, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.natalFor(ctx, u)
}

func (s *Service) natalFor(ctx context.Context, u *domain.User) (*domain.NatalChartRecord, error) {
	birth := BirthData(u)
	fp, err := s.calc.Fingerprint(birth)
	if err != nil {
		return nil, err
	}

	key := u.ID.String() + ":" + fp
	if rec, ok := s.natalCache.Get(key); ok {
		observability.RecordNatalCache(true)
		return &rec, nil
	}
	observability.RecordNatalCache(false)

	rec, err := s.stores.NatalCharts.GetByUserID(ctx, u.ID)
	switch {
	case err == nil && rec.Fingerprint == fp:
		s.natalCache.Add(key, *rec)
		return rec, nil
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("get natal chart: %w", err)
	}

	start := s.now()
	chart, err := s.calc.NatalChart(birth)
	if err != nil {
		observability.RecordCalculationError("natal_chart")
		return nil, err
	}
	observability.RecordChart("natal", s.now().Sub(start))

	ms := s.now().UnixMilli()
	rec = &domain.NatalChartRecord{
		UserID:       u.ID,
		Fingerprint:  fp,
		Chart:        *chart,
		CalculatedAt: ms,
		UpdatedAt:    ms,
	}
	if err := s.stores.NatalCharts.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("store natal chart: %w", err)
	}
	s.natalCache.Add(key, *rec)
	s.logger.Printf("Computed natal chart for %s (%s)", u.Username, fp)
	return rec, nil
}

// DailyGCode computes, stores and publishes the reading of a user for date.
func (s *Service) DailyGCode(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyGCode, error) {
	u, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.dailyFor(ctx, u, date)
}

func (s *Service) dailyFor(ctx context.Context, u *domain.User, date time.Time) (*domain.DailyGCode, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: transit date is required", astro.ErrInvalidInput)
	}
	date = astro.CivilDate(date)

	natal, err := s.natalFor(ctx, u)
	if err != nil {
		return nil, err
	}

	start := s.now()
	transits, err := s.calc.Transits(BirthData(u), date)
	if err != nil {
		observability.RecordCalculationError("transits")
		return nil, err
	}
	observability.RecordChart("transits", s.now().Sub(start))

	score := s.calc.Intensity(transits.Planets, transits.Aspects)
	level := domain.LevelForScore(score)

	interp, err := s.interpreter.Interpret(ctx, Reading{
		Natal:    &natal.Chart,
		Transits: transits,
		Score:    score,
		Level:    level,
		Tone:     u.PreferredTone,
	})
	if err != nil {
		return nil, fmt.Errorf("interpret: %w", err)
	}

	g := &domain.DailyGCode{
		UserID:         u.ID,
		Username:       u.Username,
		TransitDate:    date,
		Transits:       *transits,
		Score:          score,
		Level:          level,
		Interpretation: interp,
		CreatedAt:      s.now().UnixMilli(),
	}
	if err := s.stores.DailyGCodes.Upsert(ctx, g); err != nil {
		return nil, fmt.Errorf("store daily g-code: %w", err)
	}
	observability.RecordDailyGCode(score)

	if s.stores.ScoreHistory != nil {
		point := &domain.ScorePoint{
			UserID:      u.ID,
			TransitDate: date,
			Score:       score,
			Level:       level,
			AspectCount: len(transits.Aspects),
			Engine:      s.calc.EngineName(),
			RecordedAt:  g.CreatedAt,
		}
		if err := s.stores.ScoreHistory.InsertBulk(ctx, []*domain.ScorePoint{point}); err != nil {
			// History is derived data; the reading itself is stored.
			s.logger.Printf("Warning: failed to append score history for %s: %v", u.Username, err)
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyDailyGCode(g)
	}
	return g, nil
}

// GetDailyGCode returns the stored reading, computing it when missing.
func (s *Service) GetDailyGCode(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyGCode, error) {
	g, err := s.stores.DailyGCodes.Get(ctx, userID, astro.CivilDate(date))
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get daily g-code: %w", err)
	}
	return s.DailyGCode(ctx, userID, date)
}

// Today returns the current civil date in UTC.
func (s *Service) Today() time.Time {
	return astro.CivilDate(s.now())
}
