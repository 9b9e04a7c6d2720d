package astro

import (
	"fmt"
	"math"
	"time"
)

// J2000 is 2000-01-01 12:00 TT, treated as UTC.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// J2000JulianDate is the Julian date of J2000.
const J2000JulianDate = 2451545.0

// DaysSinceJ2000 returns fractional days from J2000 to t.
func DaysSinceJ2000(t time.Time) float64 {
	return t.Sub(J2000).Hours() / 24
}

// keplerElements are mean orbital elements at J2000 with rates per Julian
// century (JPL approximate positions, valid 1800-2050).
// Angles are in degrees, a in AU.
type keplerElements struct {
	a, aRate             float64
	e, eRate             float64
	incl, inclRate       float64
	meanLon, meanLonRate float64
	peri, periRate       float64 // longitude of perihelion
	node, nodeRate       float64 // longitude of ascending node
}

var planetElements = map[string]keplerElements{
	"mercury": {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749, 252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	"venus":   {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890, 181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	"earth":   {1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668, 100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0, 0},
	"mars":    {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131, -4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	"jupiter": {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714, 34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	"saturn":  {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609, 49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	"uranus":  {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939, 313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	"neptune": {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372, -55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
	"pluto":   {39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818, 238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482},
}

// KeplerEngine computes positions from mean orbital elements, solving
// Kepler's equation per body. Observer is geocentric; light time, nutation
// and perturbations are ignored. Asteroids and centaurs are not supported.
type KeplerEngine struct{}

var (
	_ PositionEngine     = KeplerEngine{}
	_ HeliocentricEngine = KeplerEngine{}
	_ Ascender           = KeplerEngine{}
)

func (KeplerEngine) Name() string { return EngineKepler }

func (KeplerEngine) Supports(body Body) bool {
	if body.ID == Sun.ID || body.ID == Moon.ID {
		return true
	}
	_, ok := planetElements[body.ID]
	return ok
}

// Longitude returns the geocentric ecliptic longitude of body at m.Instant.
// Earth reports its heliocentric longitude.
func (k KeplerEngine) Longitude(body Body, m Moment) (float64, error) {
	d := DaysSinceJ2000(m.Instant)

	switch body.ID {
	case Sun.ID:
		ex, ey, _ := heliocentric(planetElements["earth"], d)
		return Normalize(deg(math.Atan2(-ey, -ex))), nil
	case Moon.ID:
		return moonLongitude(d), nil
	case EarthBody.ID:
		return k.HeliocentricLongitude(body, m)
	}

	el, ok := planetElements[body.ID]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no orbital elements", ErrUnsupportedBody, body.ID)
	}
	px, py, _ := heliocentric(el, d)
	ex, ey, _ := heliocentric(planetElements["earth"], d)
	return Normalize(deg(math.Atan2(py-ey, px-ex))), nil
}

// HeliocentricLongitude returns the longitude seen from the Sun.
// The Sun sits at the origin and reports 0; the Moon reports Earth's value.
func (KeplerEngine) HeliocentricLongitude(body Body, m Moment) (float64, error) {
	d := DaysSinceJ2000(m.Instant)

	id := body.ID
	switch id {
	case Sun.ID:
		return 0, nil
	case Moon.ID:
		id = EarthBody.ID
	}

	el, ok := planetElements[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no orbital elements", ErrUnsupportedBody, body.ID)
	}
	x, y, _ := heliocentric(el, d)
	return Normalize(deg(math.Atan2(y, x))), nil
}

// AscendantLongitude approximates the ascendant as the point 90° east of
// the local sidereal time for an observer on the equator at Greenwich.
func (KeplerEngine) AscendantLongitude(m Moment) float64 {
	d := DaysSinceJ2000(m.Instant)
	gmst := 280.46061837 + 360.98564736629*d
	return Normalize(gmst + 90)
}

// heliocentric returns J2000 ecliptic coordinates in AU.
func heliocentric(el keplerElements, d float64) (x, y, z float64) {
	t := d / 36525

	a := el.a + el.aRate*t
	e := el.e + el.eRate*t
	incl := rad(el.incl + el.inclRate*t)
	meanLon := el.meanLon + el.meanLonRate*t
	peri := el.peri + el.periRate*t
	node := el.node + el.nodeRate*t

	argPeri := rad(peri - node)
	meanAnomaly := rad(floorMod(meanLon-peri+180, 360) - 180)
	ecc := solveKepler(meanAnomaly, e)

	xp := a * (math.Cos(ecc) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(ecc)

	cw, sw := math.Cos(argPeri), math.Sin(argPeri)
	cn, sn := math.Cos(rad(node)), math.Sin(rad(node))
	ci, si := math.Cos(incl), math.Sin(incl)

	x = (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp
	y = (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp
	z = (sw*si)*xp + (cw*si)*yp
	return x, y, z
}

// solveKepler solves E - e*sin(E) = M by Newton iteration.
func solveKepler(meanAnomaly, e float64) float64 {
	ecc := meanAnomaly + e*math.Sin(meanAnomaly)
	for i := 0; i < 20; i++ {
		delta := (ecc - e*math.Sin(ecc) - meanAnomaly) / (1 - e*math.Cos(ecc))
		ecc -= delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}
	return ecc
}

// moonLongitude uses the five largest periodic terms of the lunar theory.
func moonLongitude(d float64) float64 {
	meanLon := 218.316 + 13.176396*d
	moonAnomaly := rad(134.963 + 13.064993*d)
	sunAnomaly := rad(357.529 + 0.98560028*d)
	elongation := rad(297.850 + 12.190749*d)

	lon := meanLon +
		6.289*math.Sin(moonAnomaly) +
		1.274*math.Sin(2*elongation-moonAnomaly) +
		0.658*math.Sin(2*elongation) +
		0.214*math.Sin(2*moonAnomaly) -
		0.186*math.Sin(sunAnomaly)
	return Normalize(lon)
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }
