package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/gcode"
)

// userRequest is the body of user create and update calls.
type userRequest struct {
	Username           string `json:"username"`
	Email              string `json:"email"`
	BirthDate          string `json:"birth_date"` // YYYY-MM-DD
	BirthTime          string `json:"birth_time"`
	BirthLocation      string `json:"birth_location"`
	Timezone           string `json:"timezone"`
	PreferredTone      string `json:"preferred_tone"`
	DailyGCodeEnabled  *bool  `json:"daily_gcode_enabled"`
	EmailNotifications *bool  `json:"email_notifications"`
}

// apply copies the request onto u. Missing flags keep their current value.
func (r userRequest) apply(u *domain.User) error {
	date, err := parseDate(r.BirthDate, "birth_date")
	if err != nil {
		return err
	}
	u.Username = r.Username
	u.Email = r.Email
	u.BirthDate = date
	u.BirthTime = r.BirthTime
	u.BirthLocation = r.BirthLocation
	u.Timezone = r.Timezone
	u.PreferredTone = domain.Tone(r.PreferredTone)
	if r.DailyGCodeEnabled != nil {
		u.DailyGCodeEnabled = *r.DailyGCodeEnabled
	}
	if r.EmailNotifications != nil {
		u.EmailNotifications = *r.EmailNotifications
	}
	return nil
}

type userResponse struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email,omitempty"`
	BirthDate          string    `json:"birth_date"`
	BirthTime          string    `json:"birth_time,omitempty"`
	BirthLocation      string    `json:"birth_location"`
	Timezone           string    `json:"timezone,omitempty"`
	PreferredTone      string    `json:"preferred_tone"`
	DailyGCodeEnabled  bool      `json:"daily_gcode_enabled"`
	EmailNotifications bool      `json:"email_notifications"`
	CreatedAt          int64     `json:"created_at"`
	UpdatedAt          int64     `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		BirthDate:          u.BirthDate.Format(time.DateOnly),
		BirthTime:          u.BirthTime,
		BirthLocation:      u.BirthLocation,
		Timezone:           u.Timezone,
		PreferredTone:      u.PreferredTone.String(),
		DailyGCodeEnabled:  u.DailyGCodeEnabled,
		EmailNotifications: u.EmailNotifications,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

type natalResponse struct {
	UserID       uuid.UUID        `json:"user_id"`
	Fingerprint  string           `json:"fingerprint"`
	Chart        astro.NatalChart `json:"chart"`
	CalculatedAt int64            `json:"calculated_at"`
}

func toNatalResponse(rec *domain.NatalChartRecord) natalResponse {
	return natalResponse{
		UserID:       rec.UserID,
		Fingerprint:  rec.Fingerprint,
		Chart:        rec.Chart,
		CalculatedAt: rec.CalculatedAt,
	}
}

type dailyResponse struct {
	UserID         uuid.UUID             `json:"user_id"`
	Username       string                `json:"username"`
	TransitDate    string                `json:"transit_date"`
	Score          int                   `json:"g_code_score"`
	Level          string                `json:"intensity_level"`
	Interpretation domain.Interpretation `json:"interpretation"`
	Transits       astro.TransitResult   `json:"transits"`
	CreatedAt      int64                 `json:"created_at"`
}

func toDailyResponse(g *domain.DailyGCode) dailyResponse {
	return dailyResponse{
		UserID:         g.UserID,
		Username:       g.Username,
		TransitDate:    g.TransitDate.Format(time.DateOnly),
		Score:          g.Score,
		Level:          g.Level.String(),
		Interpretation: g.Interpretation,
		Transits:       g.Transits,
		CreatedAt:      g.CreatedAt,
	}
}

type overviewResponse struct {
	Today    *dailyResponse  `json:"today_gcode"`
	Upcoming []dailyResponse `json:"weekly_transits"`
	Stats    overviewStats   `json:"user_stats"`
}

type overviewStats struct {
	TotalReadings int     `json:"total_readings"`
	AverageScore  float64 `json:"avg_g_code_score"`
	MemberSince   string  `json:"member_since"`
}

func toOverviewResponse(o *gcode.Overview) overviewResponse {
	out := overviewResponse{
		Upcoming: make([]dailyResponse, 0, len(o.Upcoming)),
		Stats: overviewStats{
			TotalReadings: o.TotalReadings,
			AverageScore:  o.AverageScore,
			MemberSince:   time.UnixMilli(o.User.CreatedAt).UTC().Format(time.DateOnly),
		},
	}
	if o.Today != nil {
		today := toDailyResponse(o.Today)
		out.Today = &today
	}
	for _, g := range o.Upcoming {
		out.Upcoming = append(out.Upcoming, toDailyResponse(g))
	}
	return out
}

type scorePointResponse struct {
	TransitDate string `json:"transit_date"`
	Score       int    `json:"score"`
	Level       string `json:"intensity_level"`
	AspectCount int    `json:"aspect_count"`
	Engine      string `json:"engine"`
}

type intensityRequest struct {
	Planets astro.ChartData `json:"planets"`
	Aspects []astro.Aspect  `json:"aspects"`
}

type intensityResponse struct {
	Score int    `json:"g_code_score"`
	Level string `json:"intensity_level"`
}

// birthRequest is the body of the stateless chart endpoints.
type birthRequest struct {
	BirthDate     string `json:"birth_date"`
	BirthTime     string `json:"birth_time"`
	BirthLocation string `json:"birth_location"`
	Timezone      string `json:"timezone"`
}

func (r birthRequest) birthData() (astro.BirthData, error) {
	date, err := parseDate(r.BirthDate, "birth_date")
	if err != nil {
		return astro.BirthData{}, err
	}
	return astro.BirthData{Date: date, Time: r.BirthTime, Location: r.BirthLocation, Timezone: r.Timezone}, nil
}

type transitRequest struct {
	birthRequest
	TargetDate string `json:"target_date"`
}
