package astro

import "math"

// AspectKind names an angular relationship.
type AspectKind string

const (
	Conjunction AspectKind = "conjunction"
	Sextile     AspectKind = "sextile"
	Square      AspectKind = "square"
	Trine       AspectKind = "trine"
	Opposition  AspectKind = "opposition"
)

// AspectDef is an aspect and its exact angle.
type AspectDef struct {
	Kind  AspectKind
	Angle float64
}

// AspectTable is checked in this order for every pair.
var AspectTable = [5]AspectDef{
	{Conjunction, 0},
	{Sextile, 60},
	{Square, 90},
	{Trine, 120},
	{Opposition, 180},
}

// OrbTolerance is the maximum deviation from exact for every aspect kind.
const OrbTolerance = 8.0

// Aspect is a detected relationship between two bodies.
// For cross-chart scans BodyA is the transiting body and BodyB the natal one.
type Aspect struct {
	BodyA      string     `json:"body_a"`
	BodyB      string     `json:"body_b"`
	Kind       AspectKind `json:"aspect"`
	Orb        float64    `json:"orb"`
	Separation float64    `json:"separation"`
}

// Separation is the shortest-arc angle between two longitudes, in [0, 180].
// It is symmetric in its arguments.
func Separation(a, b float64) float64 {
	diff := math.Mod(math.Abs(a-b), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// Classify returns every aspect whose exact angle lies within OrbTolerance of
// separation. The table is spaced at least 30° apart, so more than one match
// cannot happen with an 8° orb; all five are still checked and nothing is
// deduplicated.
func Classify(separation float64) []AspectDef {
	var out []AspectDef
	for _, def := range AspectTable {
		if math.Abs(separation-def.Angle) <= OrbTolerance {
			out = append(out, def)
		}
	}
	return out
}

// FindAspects scans for aspects.
//
// With b == nil it checks every unordered pair inside a, in chart order
// (i < j). Otherwise it checks the full cross product a x b, iterating a in
// the outer loop. An empty input yields no aspects.
func FindAspects(a, b ChartData) []Aspect {
	var out []Aspect
	if b == nil {
		for i := 0; i < len(a); i++ {
			for j := i + 1; j < len(a); j++ {
				out = appendAspects(out, a[i], a[j])
			}
		}
		return out
	}

	for _, pa := range a {
		for _, pb := range b {
			out = appendAspects(out, pa, pb)
		}
	}
	return out
}

func appendAspects(out []Aspect, a, b BodyPosition) []Aspect {
	sep := Separation(a.Longitude, b.Longitude)
	for _, def := range Classify(sep) {
		out = append(out, Aspect{
			BodyA:      a.Body,
			BodyB:      b.Body,
			Kind:       def.Kind,
			Orb:        math.Abs(sep - def.Angle),
			Separation: sep,
		})
	}
	return out
}
