package astro

import (
	"math"
	"testing"
)

func TestSeparation(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"same point", 42, 42, 0},
		{"square", 10, 100, 90},
		{"across aries point", 350, 10, 20},
		{"exact opposition", 0, 180, 180},
		{"long way round", 10, 300, 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Separation(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Separation(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Separation(tt.b, tt.a); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Separation(%v, %v) = %v, want %v (reversed)", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestSeparationBounded(t *testing.T) {
	for a := 0.0; a < 360; a += 7.3 {
		for b := 0.0; b < 360; b += 11.1 {
			s := Separation(a, b)
			if s < 0 || s > 180 {
				t.Fatalf("Separation(%v, %v) = %v outside [0, 180]", a, b, s)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		sep  float64
		want AspectKind
	}{
		{0, Conjunction},
		{8, Conjunction},
		{52, Sextile},
		{90, Square},
		{127.9, Trine},
		{172, Opposition},
	}

	for _, tt := range tests {
		got := Classify(tt.sep)
		if len(got) != 1 || got[0].Kind != tt.want {
			t.Errorf("Classify(%v) = %v, want single %s", tt.sep, got, tt.want)
		}
	}

	for _, sep := range []float64{8.01, 20, 45, 75, 105, 140, 171.9} {
		if got := Classify(sep); len(got) != 0 {
			t.Errorf("Classify(%v) = %v, want none", sep, got)
		}
	}
}

func TestFindAspectsSquare(t *testing.T) {
	a := ChartData{{Body: "mars", Position: NewPosition(10)}}
	b := ChartData{{Body: "sun", Position: NewPosition(100)}}

	got := FindAspects(a, b)
	if len(got) != 1 {
		t.Fatalf("got %d aspects, want 1", len(got))
	}
	asp := got[0]
	if asp.BodyA != "mars" || asp.BodyB != "sun" {
		t.Errorf("bodies = %s/%s, want mars/sun", asp.BodyA, asp.BodyB)
	}
	if asp.Kind != Square {
		t.Errorf("kind = %s, want square", asp.Kind)
	}
	if asp.Orb != 0 {
		t.Errorf("orb = %v, want 0", asp.Orb)
	}
}

func TestFindAspectsWrapNoAspect(t *testing.T) {
	a := ChartData{{Body: "venus", Position: NewPosition(350)}}
	b := ChartData{{Body: "moon", Position: NewPosition(10)}}

	if got := FindAspects(a, b); len(got) != 0 {
		t.Errorf("got %v, want no aspects for a 20° separation", got)
	}
}

func TestFindAspectsInternalPairs(t *testing.T) {
	chart := ChartData{
		{Body: "sun", Position: NewPosition(0)},
		{Body: "moon", Position: NewPosition(3)},
		{Body: "mars", Position: NewPosition(120)},
	}

	got := FindAspects(chart, nil)
	// sun-moon conjunction, sun-mars trine, moon-mars trine
	if len(got) != 3 {
		t.Fatalf("got %d aspects, want 3: %v", len(got), got)
	}
	wantOrder := [][2]string{{"sun", "moon"}, {"sun", "mars"}, {"moon", "mars"}}
	for i, w := range wantOrder {
		if got[i].BodyA != w[0] || got[i].BodyB != w[1] {
			t.Errorf("aspect %d = %s-%s, want %s-%s", i, got[i].BodyA, got[i].BodyB, w[0], w[1])
		}
	}
	for _, asp := range got {
		if asp.Orb < 0 || asp.Orb > OrbTolerance {
			t.Errorf("orb %v outside [0, %v]", asp.Orb, OrbTolerance)
		}
	}
}

func TestFindAspectsEmpty(t *testing.T) {
	if got := FindAspects(nil, nil); len(got) != 0 {
		t.Errorf("FindAspects(nil, nil) = %v", got)
	}
	if got := FindAspects(ChartData{}, ChartData{{Body: "sun"}}); len(got) != 0 {
		t.Errorf("FindAspects(empty, one) = %v", got)
	}
}

func TestFindAspectsOrbEdgeUsesFullPrecision(t *testing.T) {
	// 8.004 would round to 8.00 at two decimals; longitudes are not rounded
	a := ChartData{{Body: "sun", Position: NewPosition(0)}}
	b := ChartData{{Body: "moon", Position: NewPosition(8.004)}}
	if got := FindAspects(a, b); len(got) != 0 {
		t.Errorf("got %v, want no aspect just past the orb", got)
	}

	b = ChartData{{Body: "moon", Position: NewPosition(7.996)}}
	got := FindAspects(a, b)
	if len(got) != 1 || got[0].Kind != Conjunction {
		t.Fatalf("got %v, want one conjunction just inside the orb", got)
	}
	if math.Abs(got[0].Orb-7.996) > 1e-9 {
		t.Errorf("orb = %v, want unrounded 7.996", got[0].Orb)
	}
}
