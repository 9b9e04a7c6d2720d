package astro

import "fmt"

// Sign is one of the twelve zodiac signs.
type Sign string

const (
	Aries       Sign = "Aries"
	Taurus      Sign = "Taurus"
	Gemini      Sign = "Gemini"
	Cancer      Sign = "Cancer"
	Leo         Sign = "Leo"
	Virgo       Sign = "Virgo"
	Libra       Sign = "Libra"
	Scorpio     Sign = "Scorpio"
	Sagittarius Sign = "Sagittarius"
	Capricorn   Sign = "Capricorn"
	Aquarius    Sign = "Aquarius"
	Pisces      Sign = "Pisces"
)

// Zodiac lists the signs in ecliptic order starting at 0° Aries.
var Zodiac = [12]Sign{
	Aries, Taurus, Gemini, Cancer,
	Leo, Virgo, Libra, Scorpio,
	Sagittarius, Capricorn, Aquarius, Pisces,
}

// ZodiacSymbols maps each sign to its glyph.
var ZodiacSymbols = map[Sign]string{
	Aries: "♈", Taurus: "♉", Gemini: "♊", Cancer: "♋",
	Leo: "♌", Virgo: "♍", Libra: "♎", Scorpio: "♏",
	Sagittarius: "♐", Capricorn: "♑", Aquarius: "♒", Pisces: "♓",
}

// Element is one of the four classical elements.
type Element string

const (
	Fire  Element = "fire"
	Earth Element = "earth"
	Air   Element = "air"
	Water Element = "water"
)

// Elements lists the elements in reporting order.
var Elements = [4]Element{Fire, Earth, Air, Water}

// ElementSigns groups the zodiac into triplicities.
var ElementSigns = map[Element][3]Sign{
	Fire:  {Aries, Leo, Sagittarius},
	Earth: {Taurus, Virgo, Capricorn},
	Air:   {Gemini, Libra, Aquarius},
	Water: {Cancer, Scorpio, Pisces},
}

// ElementOf returns the element of a sign, or "" for an unknown sign.
func ElementOf(s Sign) Element {
	for _, e := range Elements {
		for _, member := range ElementSigns[e] {
			if member == s {
				return e
			}
		}
	}
	return ""
}

// Category groups bodies for presentation.
type Category string

const (
	CategoryStar      Category = "star"
	CategorySatellite Category = "satellite"
	CategoryPersonal  Category = "personal"
	CategorySocial    Category = "social"
	CategoryOuter     Category = "outer"
	CategoryAsteroid  Category = "asteroid"
	CategoryCentaur   Category = "centaur"
)

// Body is a tracked celestial body.
// PeriodDays is the mean orbital (or apparent) period used by MockEngine.
type Body struct {
	ID         string   `json:"id"`
	PeriodDays float64  `json:"period_days"`
	Symbol     string   `json:"symbol"`
	Category   Category `json:"category"`
}

var (
	Sun       = Body{ID: "sun", PeriodDays: 365.25, Symbol: "☉", Category: CategoryStar}
	Moon      = Body{ID: "moon", PeriodDays: 27.32, Symbol: "☽", Category: CategorySatellite}
	Mercury   = Body{ID: "mercury", PeriodDays: 87.97, Symbol: "☿", Category: CategoryPersonal}
	Venus     = Body{ID: "venus", PeriodDays: 224.7, Symbol: "♀", Category: CategoryPersonal}
	EarthBody = Body{ID: "earth", PeriodDays: 365.25, Symbol: "🌍", Category: CategoryPersonal}
	Mars      = Body{ID: "mars", PeriodDays: 687, Symbol: "♂", Category: CategoryPersonal}
	Jupiter   = Body{ID: "jupiter", PeriodDays: 4332.59, Symbol: "♃", Category: CategorySocial}
	Saturn    = Body{ID: "saturn", PeriodDays: 10759.22, Symbol: "♄", Category: CategorySocial}
	Uranus    = Body{ID: "uranus", PeriodDays: 30685.4, Symbol: "♅", Category: CategoryOuter}
	Neptune   = Body{ID: "neptune", PeriodDays: 60189, Symbol: "♆", Category: CategoryOuter}
	Pluto     = Body{ID: "pluto", PeriodDays: 90560, Symbol: "♇", Category: CategoryOuter}

	Ceres  = Body{ID: "ceres", PeriodDays: 1681.63, Symbol: "⚳", Category: CategoryAsteroid}
	Pallas = Body{ID: "pallas", PeriodDays: 1686.0, Symbol: "⚴", Category: CategoryAsteroid}
	Juno   = Body{ID: "juno", PeriodDays: 1594.0, Symbol: "⚵", Category: CategoryAsteroid}
	Vesta  = Body{ID: "vesta", PeriodDays: 1325.75, Symbol: "⚶", Category: CategoryAsteroid}
	Chiron = Body{ID: "chiron", PeriodDays: 18530.0, Symbol: "⚷", Category: CategoryCentaur}
)

// Body set names accepted by BodySet.
const (
	BodySetClassical = "classical"
	BodySetExtended  = "extended"
)

// ClassicalBodies is the default chart body list. Order is significant: chart
// data, aspect scans and reports all follow it.
var ClassicalBodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

// ExtendedBodies adds the major asteroids and Chiron to ClassicalBodies.
var ExtendedBodies = []Body{
	Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto,
	Ceres, Pallas, Juno, Vesta, Chiron,
}

// BodySet returns a copy of the named body list.
func BodySet(name string) ([]Body, error) {
	var src []Body
	switch name {
	case "", BodySetClassical:
		src = ClassicalBodies
	case BodySetExtended:
		src = ExtendedBodies
	default:
		return nil, fmt.Errorf("%w: unknown body set %q", ErrInvalidInput, name)
	}
	out := make([]Body, len(src))
	copy(out, src)
	return out, nil
}

var bodiesByID = func() map[string]Body {
	m := make(map[string]Body)
	for _, b := range ExtendedBodies {
		m[b.ID] = b
	}
	m[EarthBody.ID] = EarthBody
	return m
}()

// LookupBody finds a body by identifier.
func LookupBody(id string) (Body, bool) {
	b, ok := bodiesByID[id]
	return b, ok
}

// OrbitalRadiusAU is the mean distance from the Sun used to lay out the
// solar-system view. Bodies not listed are drawn at 1 AU.
var OrbitalRadiusAU = map[string]float64{
	"mercury": 0.39, "venus": 0.72, "earth": 1.0, "mars": 1.52,
	"ceres": 2.77, "pallas": 2.77, "juno": 2.77, "vesta": 2.77,
	"jupiter": 5.2, "saturn": 9.58, "chiron": 13.7,
	"uranus": 19.2, "neptune": 30.05, "pluto": 39.48,
}

func orbitalRadius(id string) float64 {
	if r, ok := OrbitalRadiusAU[id]; ok {
		return r
	}
	return 1.0
}
