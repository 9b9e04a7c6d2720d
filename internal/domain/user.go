package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a person with birth data and Daily G-Code preferences.
// Corresponds to users table in PostgreSQL.
type User struct {
	ID                 uuid.UUID // PRIMARY KEY
	Username           string    // unique
	Email              string
	BirthDate          time.Time // calendar date, UTC midnight
	BirthTime          string    // "HH:MM" or empty when unknown
	BirthLocation      string    // free text, feeds the chart seed
	Timezone           string    // IANA name, empty means UTC
	PreferredTone      Tone      // interpretation tone
	DailyGCodeEnabled  bool      // include in the daily batch
	EmailNotifications bool
	CreatedAt          int64 // Unix timestamp in milliseconds
	UpdatedAt          int64 // Unix timestamp in milliseconds
}

// NewUser builds a user with a fresh ID and default preferences.
func NewUser(username string, birthDate time.Time, birthTime, location, timezone string) *User {
	now := time.Now().UnixMilli()
	return &User{
		ID:                 uuid.New(),
		Username:           username,
		BirthDate:          time.Date(birthDate.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, time.UTC),
		BirthTime:          birthTime,
		BirthLocation:      location,
		Timezone:           timezone,
		PreferredTone:      ToneInspiring,
		DailyGCodeEnabled:  true,
		EmailNotifications: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
