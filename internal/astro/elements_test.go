package astro

import (
	"math"
	"testing"
)

func TestDominantElements(t *testing.T) {
	chart := ChartData{
		{Body: "sun", Position: NewPosition(5)},      // Aries
		{Body: "moon", Position: NewPosition(125)},   // Leo
		{Body: "mercury", Position: NewPosition(65)}, // Gemini
	}

	got := DominantElements(chart)
	if got.Fire != 66.7 || got.Air != 33.3 || got.Earth != 0 || got.Water != 0 {
		t.Errorf("DominantElements = %+v", got)
	}
	if got.Dominant() != Fire {
		t.Errorf("Dominant() = %s, want fire", got.Dominant())
	}
}

func TestDominantElementsSum(t *testing.T) {
	for n := 1; n <= 15; n++ {
		chart := make(ChartData, n)
		for i := range chart {
			chart[i] = BodyPosition{Body: "b", Position: NewPosition(float64(i) * 47)}
		}
		b := DominantElements(chart)
		sum := b.Fire + b.Earth + b.Air + b.Water
		if math.Abs(sum-100) > 0.2 {
			t.Errorf("%d bodies: element shares sum to %v", n, sum)
		}
	}
}

func TestDominantElementsEmpty(t *testing.T) {
	if got := DominantElements(nil); got != (ElementBalance{}) {
		t.Errorf("DominantElements(nil) = %+v, want zeros", got)
	}
}

func TestElementOf(t *testing.T) {
	tests := map[Sign]Element{
		Aries:       Fire,
		Capricorn:   Earth,
		Libra:       Air,
		Pisces:      Water,
		"Ophiuchus": "",
	}
	for sign, want := range tests {
		if got := ElementOf(sign); got != want {
			t.Errorf("ElementOf(%s) = %q, want %q", sign, got, want)
		}
	}
}
