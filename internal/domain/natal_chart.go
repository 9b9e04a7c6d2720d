package domain

import (
	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
	"github.com/google/uuid"
)

// NatalChartRecord is a computed natal chart stored per user.
// Corresponds to natal_charts table in PostgreSQL.
type NatalChartRecord struct {
	UserID       uuid.UUID // PRIMARY KEY, one chart per user
	Fingerprint  string    // base58 hash of birth data, engine and body set
	Chart        astro.NatalChart
	CalculatedAt int64 // Unix timestamp in milliseconds
	UpdatedAt    int64 // Unix timestamp in milliseconds
}
