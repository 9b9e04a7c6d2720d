package astro

import (
	"fmt"
	"time"
)

// NatalWheel is everything a chart wheel renderer needs in one value.
type NatalWheel struct {
	Planets       ChartData         `json:"planets"`
	PlanetSymbols map[string]string `json:"planet_symbols"`
	Houses        Houses            `json:"houses"`
	Aspects       []Aspect          `json:"aspects"`
	ZodiacSymbols map[Sign]string   `json:"zodiac_symbols"`
	Ascendant     Position          `json:"ascendant"`
	SunSign       Sign              `json:"sun_sign"`
	MoonSign      Sign              `json:"moon_sign"`
	LunarNodes    LunarNodes        `json:"lunar_nodes"`
}

// NatalWheel combines the natal chart, houses and nodes at birth.
func (c *Calculator) NatalWheel(birth BirthData) (wheel *NatalWheel, err error) {
	defer recoverCalculation("natal wheel", &err)

	r, err := c.resolve(birth)
	if err != nil {
		return nil, wrapCalculation("natal wheel", err)
	}
	chart, err := c.natalChart(r)
	if err != nil {
		return nil, wrapCalculation("natal wheel", err)
	}

	symbols := make(map[string]string, len(c.bodies))
	for _, b := range c.bodies {
		symbols[b.ID] = b.Symbol
	}
	zodiac := make(map[Sign]string, len(ZodiacSymbols))
	for s, g := range ZodiacSymbols {
		zodiac[s] = g
	}

	return &NatalWheel{
		Planets:       chart.ChartData,
		PlanetSymbols: symbols,
		Houses:        c.houses(r),
		Aspects:       chart.KeyAspects,
		ZodiacSymbols: zodiac,
		Ascendant:     NewPosition(chart.AscendantLongitude),
		SunSign:       chart.SunSign,
		MoonSign:      chart.MoonSign,
		LunarNodes:    CalculateLunarNodes(r.instant),
	}, nil
}

// SolarSystemBody is one body in the solar-system view.
type SolarSystemBody struct {
	Name                  string   `json:"name"`
	Symbol                string   `json:"symbol"`
	Category              Category `json:"category"`
	HeliocentricLongitude float64  `json:"heliocentric_longitude"`
	GeocentricLongitude   float64  `json:"geocentric_longitude"`
	OrbitalRadiusAU       float64  `json:"orbital_radius_au"`
	ZodiacSign            Sign     `json:"zodiac_sign"`
	DegreeInSign          float64  `json:"degree_in_sign"`
}

// SolarSystem is the sky on one date laid out around the Sun.
type SolarSystem struct {
	Date       time.Time         `json:"date"`
	Bodies     []SolarSystemBody `json:"bodies"`
	LunarNodes LunarNodes        `json:"lunar_nodes"`
}

// solarSystemBodies is the tracked list with Earth placed after Venus.
func (c *Calculator) solarSystemBodies() []Body {
	out := make([]Body, 0, len(c.bodies)+1)
	inserted := false
	for _, b := range c.bodies {
		if b.ID == EarthBody.ID {
			continue
		}
		out = append(out, b)
		if b.ID == Venus.ID {
			out = append(out, EarthBody)
			inserted = true
		}
	}
	if !inserted {
		out = append(out, EarthBody)
	}
	return out
}

// SolarSystemTransits places every tracked body and Earth on target. Engines
// without a heliocentric model report the geocentric longitude for both.
func (c *Calculator) SolarSystemTransits(target time.Time) (system *SolarSystem, err error) {
	defer recoverCalculation("solar system", &err)

	if target.IsZero() {
		return nil, wrapCalculation("solar system", fmt.Errorf("%w: target date is required", ErrInvalidInput))
	}

	m := transitMoment(target)
	helioEngine, hasHelio := c.engine.(HeliocentricEngine)

	bodies := c.solarSystemBodies()
	out := make([]SolarSystemBody, 0, len(bodies))
	for _, b := range bodies {
		geo, err := c.engine.Longitude(b, m)
		if err != nil {
			return nil, wrapCalculation("solar system", fmt.Errorf("position of %s: %w", b.ID, err))
		}
		geo = Normalize(geo)

		helio := geo
		if hasHelio {
			h, err := helioEngine.HeliocentricLongitude(b, m)
			if err != nil {
				return nil, wrapCalculation("solar system", fmt.Errorf("heliocentric position of %s: %w", b.ID, err))
			}
			helio = Normalize(h)
		}

		pos := NewPosition(geo)
		out = append(out, SolarSystemBody{
			Name:                  b.ID,
			Symbol:                b.Symbol,
			Category:              b.Category,
			HeliocentricLongitude: helio,
			GeocentricLongitude:   geo,
			OrbitalRadiusAU:       orbitalRadius(b.ID),
			ZodiacSign:            pos.Sign,
			DegreeInSign:          pos.Degree,
		})
	}

	return &SolarSystem{
		Date:       m.Date,
		Bodies:     out,
		LunarNodes: CalculateLunarNodes(m.Instant),
	}, nil
}
