package astro

import "math"

// ElementBalance is the share of chart bodies in each element, in percent
// rounded to one decimal. The four values sum to 100 within rounding, or are
// all zero for an empty chart.
type ElementBalance struct {
	Fire  float64 `json:"fire"`
	Earth float64 `json:"earth"`
	Air   float64 `json:"air"`
	Water float64 `json:"water"`
}

// Get returns the share of one element.
func (b ElementBalance) Get(e Element) float64 {
	switch e {
	case Fire:
		return b.Fire
	case Earth:
		return b.Earth
	case Air:
		return b.Air
	case Water:
		return b.Water
	}
	return 0
}

// Dominant returns the element with the largest share. Ties go to the
// element listed first in Elements.
func (b ElementBalance) Dominant() Element {
	best := Elements[0]
	for _, e := range Elements[1:] {
		if b.Get(e) > b.Get(best) {
			best = e
		}
	}
	return best
}

// ElementCounts counts chart bodies per element.
func ElementCounts(c ChartData) map[Element]int {
	counts := make(map[Element]int, len(Elements))
	for _, e := range Elements {
		counts[e] = 0
	}
	for _, bp := range c {
		if e := ElementOf(bp.Sign); e != "" {
			counts[e]++
		}
	}
	return counts
}

// DominantElements computes the element balance of a chart.
func DominantElements(c ChartData) ElementBalance {
	counts := ElementCounts(c)
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return ElementBalance{}
	}

	pct := func(e Element) float64 {
		return math.Round(float64(counts[e])/float64(total)*1000) / 10
	}
	return ElementBalance{
		Fire:  pct(Fire),
		Earth: pct(Earth),
		Air:   pct(Air),
		Water: pct(Water),
	}
}
