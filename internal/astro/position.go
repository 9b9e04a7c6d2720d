package astro

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Position is a body's place on the ecliptic.
// Longitude is in [0, 360), Degree is the offset within Sign in [0, 30).
type Position struct {
	Sign      Sign    `json:"sign"`
	Degree    float64 `json:"degree"`
	Longitude float64 `json:"longitude"`
}

// Normalize reduces an angle into [0, 360).
func Normalize(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	// -tiny + 360 rounds to 360
	if r >= 360 {
		r = 0
	}
	return r
}

// floorMod is the remainder with the sign of the divisor.
func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

// SignOf returns the zodiac sign containing a longitude.
func SignOf(longitude float64) Sign {
	return Zodiac[int(Normalize(longitude)/30)%12]
}

// NewPosition builds a Position from any longitude.
func NewPosition(longitude float64) Position {
	lon := Normalize(longitude)
	return Position{
		Sign:      Zodiac[int(lon/30)%12],
		Degree:    math.Mod(lon, 30),
		Longitude: lon,
	}
}

// BodyPosition pairs a body identifier with its position.
type BodyPosition struct {
	Body string
	Position
}

// ChartData is an ordered body -> position mapping. Order follows the body
// list the chart was computed from and is preserved through JSON.
type ChartData []BodyPosition

// Get looks up the position of a body.
func (c ChartData) Get(body string) (Position, bool) {
	for _, bp := range c {
		if bp.Body == body {
			return bp.Position, true
		}
	}
	return Position{}, false
}

// Bodies returns the body identifiers in chart order.
func (c ChartData) Bodies() []string {
	ids := make([]string, len(c))
	for i, bp := range c {
		ids[i] = bp.Body
	}
	return ids
}

// MarshalJSON encodes the chart as a JSON object keyed by body, in order.
func (c ChartData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bp := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(bp.Body)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(bp.Position)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order.
func (c *ChartData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("chart data: expected object, got %v", tok)
	}

	var out ChartData
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("chart data: expected string key, got %v", keyTok)
		}
		var p Position
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("chart data %s: %w", key, err)
		}
		out = append(out, BodyPosition{Body: key, Position: p})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// Moment is the input to a position engine.
type Moment struct {
	// Date is the civil date at UTC midnight.
	Date time.Time
	// Instant is the timezone-resolved moment in UTC.
	Instant time.Time
	// Seed is the deterministic seed for this moment.
	Seed float64
}

// PositionEngine computes geocentric ecliptic longitudes.
type PositionEngine interface {
	Name() string
	Supports(body Body) bool
	Longitude(body Body, m Moment) (float64, error)
}

// HeliocentricEngine is implemented by engines that can also place bodies
// as seen from the Sun.
type HeliocentricEngine interface {
	HeliocentricLongitude(body Body, m Moment) (float64, error)
}

// Ascender is implemented by engines with their own ascendant model.
type Ascender interface {
	AscendantLongitude(m Moment) float64
}

// Engine names accepted by EngineByName.
const (
	EngineMock   = "mock"
	EngineKepler = "kepler"
)

// EngineByName returns the named position engine.
func EngineByName(name string) (PositionEngine, error) {
	switch name {
	case "", EngineMock:
		return MockEngine{}, nil
	case EngineKepler:
		return KeplerEngine{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrInvalidInput, name)
	}
}

// Epoch is the reference date of MockEngine.
var Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// CivilDate drops the clock part of t, keeping its calendar date.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysSinceEpoch is the signed whole-day count from 2000-01-01 to date.
func DaysSinceEpoch(date time.Time) int64 {
	return (CivilDate(date).Unix() - Epoch.Unix()) / 86400
}

// MockEngine places each body by uniform motion over its mean period plus a
// seed-dependent phase. It is a reproducible simulation, not an ephemeris:
// identical (date, seed) pairs always produce identical longitudes.
type MockEngine struct{}

var _ PositionEngine = MockEngine{}

func (MockEngine) Name() string { return EngineMock }

// Supports reports whether the body has a usable mean period.
func (MockEngine) Supports(body Body) bool {
	return body.PeriodDays > 0
}

// Longitude = (days/period*360 + seed*charsum(id)/1000*360) mod 360
func (MockEngine) Longitude(body Body, m Moment) (float64, error) {
	if body.PeriodDays <= 0 {
		return 0, fmt.Errorf("%w: %s has no orbital period", ErrUnsupportedBody, body.ID)
	}
	days := float64(DaysSinceEpoch(m.Date))
	bodySeed := m.Seed * float64(charSum(body.ID)) / 1000.0
	return Normalize(days/body.PeriodDays*360 + bodySeed*360), nil
}

func charSum(s string) int {
	sum := 0
	for _, r := range s {
		sum += int(r)
	}
	return sum
}
