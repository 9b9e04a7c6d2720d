package astro

import (
	"fmt"
	"math"
)

// HouseSystem names a house division method.
type HouseSystem string

const (
	HousePlacidus HouseSystem = "placidus"
	HouseEqual    HouseSystem = "equal"
)

// HouseCusp is the starting longitude of one house.
type HouseCusp struct {
	House int `json:"house"`
	Position
}

// Houses is a complete set of twelve cusps and the system that produced it.
type Houses struct {
	System HouseSystem `json:"system"`
	Cusps  []HouseCusp `json:"cusps"`
}

// EqualHouses divides the chart into twelve 30° houses from the ascendant.
// A non-finite ascendant is treated as 0° Aries so this never fails.
func EqualHouses(ascendant float64) []HouseCusp {
	if math.IsNaN(ascendant) || math.IsInf(ascendant, 0) {
		ascendant = 0
	}
	cusps := make([]HouseCusp, 12)
	for i := 0; i < 12; i++ {
		cusps[i] = HouseCusp{House: i + 1, Position: NewPosition(ascendant + float64(i)*30)}
	}
	return cusps
}

// Size weight of the variation by house category, for houses 1..6.
// Angular houses get the largest share; succedent and cadent houses take
// the opposite sign so that houses 1..6 always total 180°.
var placidusWeights = [6]float64{
	1.0,  // 1 angular
	-0.6, // 2 succedent
	-0.4, // 3 cadent
	1.0,  // 4 angular
	-0.6, // 5 succedent
	-0.4, // 6 cadent
}

const (
	minHouseSize = 20.0
	maxHouseSize = 40.0
)

// PlacidusHouses approximates unequal Placidus houses.
//
// This is a trigonometry-free heuristic, not a time-of-rising Placidus
// calculation. The seed in [0, 1] sets variation = (seed-0.5)*10, each of
// houses 1..6 gets 30 + variation*weight clamped to [20, 40], and houses 7..12
// mirror houses 1..6. Cusps are accumulated from the ascendant. The midheaven
// is validated but does not move the cusps.
func PlacidusHouses(ascendant, midheaven, seed float64) ([]HouseCusp, error) {
	if err := checkAngle("ascendant", ascendant); err != nil {
		return nil, err
	}
	if err := checkAngle("midheaven", midheaven); err != nil {
		return nil, err
	}
	if math.IsNaN(seed) || seed < 0 || seed > 1 {
		return nil, fmt.Errorf("%w: seed %v outside [0, 1]", ErrInvalidHouseInput, seed)
	}

	variation := (seed - 0.5) * 10

	var sizes [12]float64
	for i, w := range placidusWeights {
		size := math.Max(minHouseSize, math.Min(maxHouseSize, 30+variation*w))
		sizes[i] = size
		sizes[i+6] = size
	}

	cusps := make([]HouseCusp, 12)
	lon := ascendant
	for i := 0; i < 12; i++ {
		cusps[i] = HouseCusp{House: i + 1, Position: NewPosition(lon)}
		lon += sizes[i]
	}
	return cusps, nil
}

func checkAngle(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v >= 360 {
		return fmt.Errorf("%w: %s %v outside [0, 360)", ErrInvalidHouseInput, name, v)
	}
	return nil
}

// HousesWithFallback computes Placidus houses and falls back to equal houses
// on any failure. The returned error is the Placidus failure, for reporting
// only; the Houses value is always complete.
func HousesWithFallback(ascendant, midheaven, seed float64) (Houses, error) {
	cusps, err := placidusSafe(ascendant, midheaven, seed)
	if err != nil {
		return Houses{System: HouseEqual, Cusps: EqualHouses(ascendant)}, err
	}
	return Houses{System: HousePlacidus, Cusps: cusps}, nil
}

func placidusSafe(ascendant, midheaven, seed float64) (cusps []HouseCusp, err error) {
	defer func() {
		if r := recover(); r != nil {
			cusps, err = nil, fmt.Errorf("%w: panic: %v", ErrInvalidHouseInput, r)
		}
	}()
	return PlacidusHouses(ascendant, midheaven, seed)
}
