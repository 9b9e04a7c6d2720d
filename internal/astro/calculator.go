package astro

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Galen-Chu/spiritual-g-code/internal/seedhash"
)

// BirthData is the input of a natal chart.
type BirthData struct {
	// Date is the calendar birth date; only year, month and day are used.
	Date time.Time `json:"birth_date"`
	// Time is "HH:MM" (24h) or empty when unknown.
	Time string `json:"birth_time,omitempty"`
	// Location is free text. It feeds the seed but is not geocoded.
	Location string `json:"birth_location"`
	// Timezone is an IANA name; empty means UTC.
	Timezone string `json:"timezone,omitempty"`
}

// resolvedBirth is BirthData after validation and defaulting.
type resolvedBirth struct {
	date        time.Time
	timeStr     string
	hasTime     bool
	hour        int
	minute      int
	location    string
	timezone    string
	instant     time.Time
	seed        float64
	fingerprint string
}

func (c *Calculator) resolve(b BirthData) (resolvedBirth, error) {
	if b.Date.IsZero() {
		return resolvedBirth{}, fmt.Errorf("%w: birth date is required", ErrInvalidInput)
	}

	r := resolvedBirth{
		date:     CivilDate(b.Date),
		timeStr:  strings.TrimSpace(b.Time),
		location: b.Location,
		timezone: b.Timezone,
	}
	if r.location == "" {
		r.location = seedhash.DefaultLocation
	}
	if r.timezone == "" {
		r.timezone = "UTC"
	}

	if r.timeStr != "" {
		clock, err := time.Parse("15:04", r.timeStr)
		if err != nil {
			return resolvedBirth{}, fmt.Errorf("%w: birth time %q: want HH:MM", ErrInvalidInput, b.Time)
		}
		r.hasTime = true
		r.hour, r.minute = clock.Hour(), clock.Minute()
	}

	loc, err := time.LoadLocation(r.timezone)
	if err != nil {
		return resolvedBirth{}, fmt.Errorf("%w: timezone %q: %v", ErrInvalidInput, r.timezone, err)
	}
	r.instant = time.Date(r.date.Year(), r.date.Month(), r.date.Day(), r.hour, r.minute, 0, 0, loc).UTC()

	r.seed = seedhash.Seed(r.date, r.timeStr, r.location)
	r.fingerprint = seedhash.ChartFingerprint(r.date, r.timeStr, r.location, r.timezone, c.engine.Name(), c.bodySet)
	return r, nil
}

func (r resolvedBirth) moment() Moment {
	return Moment{Date: r.date, Instant: r.instant, Seed: r.seed}
}

// timeDecimal is the birth clock in hours; noon when unknown.
func (r resolvedBirth) timeDecimal() float64 {
	if !r.hasTime {
		return 12.0
	}
	return float64(r.hour) + float64(r.minute)/60.0
}

// NatalChart is the snapshot of the sky at birth.
type NatalChart struct {
	ChartData          ChartData      `json:"chart_data"`
	SunSign            Sign           `json:"sun_sign"`
	MoonSign           Sign           `json:"moon_sign"`
	Ascendant          Sign           `json:"ascendant"`
	AscendantLongitude float64        `json:"ascendant_longitude"`
	DominantElements   ElementBalance `json:"dominant_elements"`
	KeyAspects         []Aspect       `json:"key_aspects"`
	Engine             string         `json:"engine"`
	Fingerprint        string         `json:"fingerprint"`
}

// TransitResult compares the sky on a target date with a natal chart.
type TransitResult struct {
	Date        time.Time  `json:"date"`
	Planets     ChartData  `json:"planets"`
	Aspects     []Aspect   `json:"aspects"`
	NatalChart  NatalChart `json:"natal_chart"`
	LunarNodes  LunarNodes `json:"lunar_nodes"`
	NodeAspects []Aspect   `json:"node_aspects"`
}

// ChartCalculator is the capability the rest of the application depends on.
type ChartCalculator interface {
	EngineName() string
	Fingerprint(birth BirthData) (string, error)
	NatalChart(birth BirthData) (*NatalChart, error)
	Transits(birth BirthData, target time.Time) (*TransitResult, error)
	Intensity(transits ChartData, aspects []Aspect) int
	PlacidusHouses(birth BirthData) (*Houses, error)
	LunarNodes(at time.Time) LunarNodes
	NatalWheel(birth BirthData) (*NatalWheel, error)
	SolarSystemTransits(target time.Time) (*SolarSystem, error)
}

// Calculator composes a position engine, a body list and a scorer.
// It is immutable after construction.
type Calculator struct {
	engine  PositionEngine
	bodies  []Body
	bodySet string
	scorer  Scorer
}

var _ ChartCalculator = (*Calculator)(nil)

// Option configures a Calculator.
type Option func(*Calculator)

// WithEngine selects the position engine.
func WithEngine(e PositionEngine) Option {
	return func(c *Calculator) { c.engine = e }
}

// WithBodies selects the tracked bodies. name identifies the set in
// fingerprints.
func WithBodies(name string, bodies []Body) Option {
	return func(c *Calculator) {
		c.bodySet = name
		c.bodies = append([]Body(nil), bodies...)
	}
}

// WithScorer selects the intensity scheme.
func WithScorer(s Scorer) Option {
	return func(c *Calculator) { c.scorer = s }
}

// NewCalculator builds a Calculator. Defaults: MockEngine, ClassicalBodies,
// WeightedScorer. It fails if the engine cannot place every body.
func NewCalculator(opts ...Option) (*Calculator, error) {
	c := &Calculator{
		engine:  MockEngine{},
		bodies:  append([]Body(nil), ClassicalBodies...),
		bodySet: BodySetClassical,
		scorer:  WeightedScorer{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.engine == nil || c.scorer == nil {
		return nil, fmt.Errorf("%w: engine and scorer are required", ErrInvalidInput)
	}
	if len(c.bodies) == 0 {
		return nil, fmt.Errorf("%w: empty body list", ErrInvalidInput)
	}
	for _, b := range c.bodies {
		if !c.engine.Supports(b) {
			return nil, fmt.Errorf("%w: engine %s cannot place %s", ErrUnsupportedBody, c.engine.Name(), b.ID)
		}
	}
	return c, nil
}

// EngineName returns the name of the position engine.
func (c *Calculator) EngineName() string { return c.engine.Name() }

// BodySetName returns the name of the tracked body list.
func (c *Calculator) BodySetName() string { return c.bodySet }

// Fingerprint validates birth and returns the key its natal chart would
// carry, without computing positions.
func (c *Calculator) Fingerprint(birth BirthData) (string, error) {
	r, err := c.resolve(birth)
	if err != nil {
		return "", err
	}
	return r.fingerprint, nil
}

// ScorerName returns the name of the intensity scheme.
func (c *Calculator) ScorerName() string { return c.scorer.Name() }

// positions places every tracked body at m, in body order.
func (c *Calculator) positions(m Moment) (ChartData, error) {
	chart := make(ChartData, 0, len(c.bodies))
	for _, b := range c.bodies {
		lon, err := c.engine.Longitude(b, m)
		if err != nil {
			return nil, fmt.Errorf("position of %s: %w", b.ID, err)
		}
		if math.IsNaN(lon) || math.IsInf(lon, 0) {
			return nil, fmt.Errorf("position of %s: non-finite longitude", b.ID)
		}
		chart = append(chart, BodyPosition{Body: b.ID, Position: NewPosition(lon)})
	}
	return chart, nil
}

// ascendantLongitude uses the engine's own model when it has one, otherwise
// the simulated formula (time/2 + dayOfYear/30) * seed, read modulo 12 signs.
func (c *Calculator) ascendantLongitude(r resolvedBirth) float64 {
	if a, ok := c.engine.(Ascender); ok {
		return a.AscendantLongitude(r.moment())
	}

	dayOfYear := float64(r.date.YearDay() - 1)
	x := (r.timeDecimal()/2.0 + dayOfYear/30.0) * r.seed
	index := int(x) % 12
	degree := (x - math.Floor(x)) * 30
	if degree >= 30 {
		degree = math.Nextafter(30, 0)
	}
	return float64(index)*30 + degree
}

// NatalChart computes the natal chart for birth.
func (c *Calculator) NatalChart(birth BirthData) (chart *NatalChart, err error) {
	defer recoverCalculation("natal chart", &err)

	r, err := c.resolve(birth)
	if err != nil {
		return nil, wrapCalculation("natal chart", err)
	}
	chart, err = c.natalChart(r)
	if err != nil {
		return nil, wrapCalculation("natal chart", err)
	}
	return chart, nil
}

func (c *Calculator) natalChart(r resolvedBirth) (*NatalChart, error) {
	data, err := c.positions(r.moment())
	if err != nil {
		return nil, err
	}

	sun, ok := data.Get(Sun.ID)
	if !ok {
		return nil, fmt.Errorf("chart has no %s", Sun.ID)
	}
	moon, ok := data.Get(Moon.ID)
	if !ok {
		return nil, fmt.Errorf("chart has no %s", Moon.ID)
	}

	ascLon := c.ascendantLongitude(r)
	return &NatalChart{
		ChartData:          data,
		SunSign:            sun.Sign,
		MoonSign:           moon.Sign,
		Ascendant:          SignOf(ascLon),
		AscendantLongitude: ascLon,
		DominantElements:   DominantElements(data),
		KeyAspects:         FindAspects(data, nil),
		Engine:             c.engine.Name(),
		Fingerprint:        r.fingerprint,
	}, nil
}

// transitMoment is the sky on target, independent of any birth data.
func transitMoment(target time.Time) Moment {
	date := CivilDate(target)
	return Moment{Date: date, Instant: date, Seed: seedhash.DateSeed(date)}
}

// Transits computes the target-date sky and its aspects to the natal chart.
// The transit sky is seeded from the target date alone.
func (c *Calculator) Transits(birth BirthData, target time.Time) (result *TransitResult, err error) {
	defer recoverCalculation("transits", &err)

	if target.IsZero() {
		return nil, wrapCalculation("transits", fmt.Errorf("%w: target date is required", ErrInvalidInput))
	}
	natal, err := c.NatalChart(birth)
	if err != nil {
		return nil, wrapCalculation("transits", err)
	}

	m := transitMoment(target)
	planets, err := c.positions(m)
	if err != nil {
		return nil, wrapCalculation("transits", err)
	}
	nodes := CalculateLunarNodes(m.Instant)

	return &TransitResult{
		Date:        m.Date,
		Planets:     planets,
		Aspects:     FindAspects(planets, natal.ChartData),
		NatalChart:  *natal,
		LunarNodes:  nodes,
		NodeAspects: FindAspects(nodes.ChartData(), natal.ChartData),
	}, nil
}

// Intensity scores transit aspects with the configured scheme.
func (c *Calculator) Intensity(transits ChartData, aspects []Aspect) int {
	return c.scorer.Score(transits, aspects)
}

// PlacidusHouses computes house cusps for birth. Placidus failures fall back
// to equal houses; only input errors are returned.
func (c *Calculator) PlacidusHouses(birth BirthData) (houses *Houses, err error) {
	defer recoverCalculation("houses", &err)

	r, err := c.resolve(birth)
	if err != nil {
		return nil, wrapCalculation("houses", err)
	}
	h := c.houses(r)
	return &h, nil
}

func (c *Calculator) houses(r resolvedBirth) Houses {
	asc := c.ascendantLongitude(r)
	mc := Normalize(asc - 90)
	// Seeds span [0, 100]; the house model wants [0, 1].
	h, _ := HousesWithFallback(asc, mc, r.seed/100)
	return h
}

// LunarNodes computes the mean lunar nodes at the given moment.
func (c *Calculator) LunarNodes(at time.Time) LunarNodes {
	return CalculateLunarNodes(at)
}
