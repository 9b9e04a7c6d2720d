package domain

import (
	"time"

	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
	"github.com/google/uuid"
)

// Interpretation is the narrative layer of a Daily G-Code.
type Interpretation struct {
	Themes            []string `json:"themes"`
	Interpretation    string   `json:"interpretation"`
	Affirmation       string   `json:"affirmation"`
	PracticalGuidance []string `json:"practical_guidance"`
}

// DailyGCode is one user's transit reading for one date.
// Corresponds to daily_gcodes table in PostgreSQL, unique on (user_id, transit_date).
type DailyGCode struct {
	UserID         uuid.UUID
	Username       string
	TransitDate    time.Time           // calendar date, UTC midnight
	Transits       astro.TransitResult // planets, aspects, nodes
	Score          int                 // 1..100
	Level          IntensityLevel
	Interpretation Interpretation
	CreatedAt      int64 // Unix timestamp in milliseconds
}

// ScorePoint is one sample of a user's score history.
// Corresponds to score_history table in ClickHouse.
type ScorePoint struct {
	UserID      uuid.UUID
	TransitDate time.Time
	Score       int
	Level       IntensityLevel
	AspectCount int
	Engine      string
	RecordedAt  int64 // Unix timestamp in milliseconds
}
