package astro

import (
	"math"
	"testing"
	"time"
)

func TestLunarNodesAtJ2000(t *testing.T) {
	n := CalculateLunarNodes(J2000)

	if math.Abs(n.North.Longitude-MeanNodeAtJ2000) > 1e-9 {
		t.Errorf("north = %v, want %v", n.North.Longitude, MeanNodeAtJ2000)
	}
	if n.North.Sign != Leo {
		t.Errorf("north sign = %s, want Leo", n.North.Sign)
	}
	if n.South.Sign != Aquarius {
		t.Errorf("south sign = %s, want Aquarius", n.South.Sign)
	}
}

func TestLunarNodesOpposite(t *testing.T) {
	start := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		at := start.AddDate(0, 0, i*97)
		n := CalculateLunarNodes(at)
		if sep := Separation(n.North.Longitude, n.South.Longitude); math.Abs(sep-180) > 1e-9 {
			t.Fatalf("%s: node separation = %v, want 180", at.Format("2006-01-02"), sep)
		}
	}
}

func TestLunarNodesRetrograde(t *testing.T) {
	a := CalculateLunarNodes(J2000)
	b := CalculateLunarNodes(J2000.AddDate(0, 0, 10))

	// about 0.53° of retrograde motion in ten days
	moved := Normalize(a.North.Longitude - b.North.Longitude)
	if moved < 0.4 || moved > 0.7 {
		t.Errorf("north node moved %v° backwards in 10 days", moved)
	}
}

func TestLunarNodesPeriodic(t *testing.T) {
	at := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	later := at.Add(time.Duration(NodePeriodDays * 24 * float64(time.Hour)))

	a := CalculateLunarNodes(at)
	b := CalculateLunarNodes(later)
	if sep := Separation(a.North.Longitude, b.North.Longitude); sep > 1e-6 {
		t.Errorf("north node after one period differs by %v°", sep)
	}
}

func TestLunarNodesChartData(t *testing.T) {
	c := CalculateLunarNodes(J2000).ChartData()
	if got := c.Bodies(); len(got) != 2 || got[0] != "north_node" || got[1] != "south_node" {
		t.Errorf("Bodies() = %v", got)
	}
}
