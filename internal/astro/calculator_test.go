package astro

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func taipeiBirth() BirthData {
	return BirthData{
		Date:     time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC),
		Time:     "14:30",
		Location: "Taipei, Taiwan",
	}
}

func newMockCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator()
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return c
}

func TestNatalChartTaipei(t *testing.T) {
	c := newMockCalculator(t)

	chart, err := c.NatalChart(taipeiBirth())
	if err != nil {
		t.Fatalf("NatalChart: %v", err)
	}

	signs := []struct {
		name      string
		got, want Sign
	}{
		{"sun", chart.SunSign, Aquarius},
		{"moon", chart.MoonSign, Leo},
		{"ascendant", chart.Ascendant, Taurus},
	}
	for _, s := range signs {
		if s.got != s.want {
			t.Errorf("%s sign = %s, want %s", s.name, s.got, s.want)
		}
	}
	if math.Abs(chart.AscendantLongitude-50.97615091385478) > 1e-6 {
		t.Errorf("AscendantLongitude = %v", chart.AscendantLongitude)
	}
	if chart.Engine != EngineMock {
		t.Errorf("Engine = %q, want %q", chart.Engine, EngineMock)
	}
	if chart.Fingerprint == "" {
		t.Error("Fingerprint is empty")
	}

	wantOrder := []string{"sun", "moon", "mercury", "venus", "mars", "jupiter", "saturn", "uranus", "neptune", "pluto"}
	if got := chart.ChartData.Bodies(); !reflect.DeepEqual(got, wantOrder) {
		t.Errorf("Bodies() = %v, want %v", got, wantOrder)
	}

	if len(chart.KeyAspects) != 11 {
		t.Errorf("len(KeyAspects) = %d, want 11", len(chart.KeyAspects))
	}
	if want := (ElementBalance{Fire: 40, Earth: 20, Air: 30, Water: 10}); chart.DominantElements != want {
		t.Errorf("DominantElements = %+v, want %+v", chart.DominantElements, want)
	}
}

func TestNatalChartDeterministic(t *testing.T) {
	c := newMockCalculator(t)

	a, err := c.NatalChart(taipeiBirth())
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.NatalChart(taipeiBirth())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Errorf("charts differ:\n%+v\n%+v", a, b)
	}
}

func TestFingerprintMatchesChart(t *testing.T) {
	c := newMockCalculator(t)

	fp, err := c.Fingerprint(taipeiBirth())
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	chart, err := c.NatalChart(taipeiBirth())
	if err != nil {
		t.Fatalf("NatalChart: %v", err)
	}
	if fp != chart.Fingerprint {
		t.Errorf("Fingerprint() = %s, chart has %s", fp, chart.Fingerprint)
	}

	if _, err := c.Fingerprint(BirthData{Date: taipeiBirth().Date, Time: "25:99"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad time err = %v, want ErrInvalidInput", err)
	}
}

func TestNatalChartInputSensitivity(t *testing.T) {
	c := newMockCalculator(t)

	base, err := c.NatalChart(taipeiBirth())
	if err != nil {
		t.Fatal(err)
	}

	other := taipeiBirth()
	other.Location = "Kaohsiung, Taiwan"
	moved, err := c.NatalChart(other)
	if err != nil {
		t.Fatal(err)
	}

	if reflect.DeepEqual(base.ChartData, moved.ChartData) {
		t.Error("moving the birth place left the chart unchanged")
	}
	if base.Fingerprint == moved.Fingerprint {
		t.Error("moving the birth place left the fingerprint unchanged")
	}
}

func TestNatalChartUnknownTime(t *testing.T) {
	c := newMockCalculator(t)

	b := taipeiBirth()
	b.Time = ""
	withoutTime, err := c.NatalChart(b)
	if err != nil {
		t.Fatal(err)
	}

	b.Time = "00:00"
	midnight, err := c.NatalChart(b)
	if err != nil {
		t.Fatal(err)
	}

	// same seed, different ascendant: unknown time uses noon
	if !reflect.DeepEqual(withoutTime.ChartData, midnight.ChartData) {
		t.Error("unknown time and midnight should share planet positions")
	}
	if withoutTime.AscendantLongitude == midnight.AscendantLongitude {
		t.Errorf("ascendants both %v", midnight.AscendantLongitude)
	}
	if withoutTime.Fingerprint == midnight.Fingerprint {
		t.Errorf("fingerprints both %s", midnight.Fingerprint)
	}
}

func TestNatalChartInvalidInput(t *testing.T) {
	c := newMockCalculator(t)

	tests := []struct {
		name  string
		birth BirthData
	}{
		{"missing date", BirthData{Location: "Taipei"}},
		{"bad time", BirthData{Date: time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC), Time: "25:61"}},
		{"bad timezone", BirthData{Date: time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC), Timezone: "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.NatalChart(tt.birth)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}

			var calcErr *CalculationError
			if !errors.As(err, &calcErr) {
				t.Fatalf("err = %T, want *CalculationError", err)
			}
			if calcErr.Op != "natal chart" {
				t.Errorf("Op = %q, want %q", calcErr.Op, "natal chart")
			}
		})
	}
}

func TestTransitsTaipei(t *testing.T) {
	c := newMockCalculator(t)
	target := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	res, err := c.Transits(taipeiBirth(), target)
	if err != nil {
		t.Fatalf("Transits: %v", err)
	}

	if !res.Date.Equal(target) {
		t.Errorf("Date = %v, want %v", res.Date, target)
	}
	if len(res.Planets) != len(ClassicalBodies) {
		t.Errorf("len(Planets) = %d, want %d", len(res.Planets), len(ClassicalBodies))
	}
	if len(res.Aspects) != 37 {
		t.Errorf("len(Aspects) = %d, want 37", len(res.Aspects))
	}
	if res.NatalChart.SunSign != Aquarius {
		t.Errorf("natal sun = %s, want %s", res.NatalChart.SunSign, Aquarius)
	}
	if sep := Separation(res.LunarNodes.North.Longitude, res.LunarNodes.South.Longitude); math.Abs(sep-180) > 1e-9 {
		t.Errorf("nodes %v apart, want 180", sep)
	}

	for _, a := range res.Aspects {
		_, transit := res.Planets.Get(a.BodyA)
		_, natal := res.NatalChart.ChartData.Get(a.BodyB)
		if !transit || !natal {
			t.Errorf("aspect %s-%s does not pair a transit body with a natal one", a.BodyA, a.BodyB)
		}
	}
	for _, a := range res.NodeAspects {
		if a.BodyA != "north_node" && a.BodyA != "south_node" {
			t.Errorf("node aspect from %s", a.BodyA)
		}
	}

	if got := c.Intensity(res.Planets, res.Aspects); got != 100 {
		t.Errorf("Intensity = %d, want 100", got)
	}
}

func TestTransitSkyIgnoresBirthData(t *testing.T) {
	c := newMockCalculator(t)
	target := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	other := BirthData{Date: time.Date(1985, 7, 4, 0, 0, 0, 0, time.UTC), Location: "Lisbon"}

	a, err := c.Transits(taipeiBirth(), target)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Transits(other, target)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(a.Planets, b.Planets) {
		t.Error("transit planets depend on birth data")
	}
	if !reflect.DeepEqual(a.LunarNodes, b.LunarNodes) {
		t.Error("lunar nodes depend on birth data")
	}
}

func TestTransitsRequiresTarget(t *testing.T) {
	c := newMockCalculator(t)
	if _, err := c.Transits(taipeiBirth(), time.Time{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestPlacidusHousesForBirth(t *testing.T) {
	c := newMockCalculator(t)

	h, err := c.PlacidusHouses(taipeiBirth())
	if err != nil {
		t.Fatalf("PlacidusHouses: %v", err)
	}

	if h.System != HousePlacidus {
		t.Errorf("System = %s, want %s", h.System, HousePlacidus)
	}
	if len(h.Cusps) != 12 {
		t.Fatalf("len(Cusps) = %d, want 12", len(h.Cusps))
	}
	if math.Abs(h.Cusps[0].Longitude-50.97615091385478) > 1e-6 {
		t.Errorf("house 1 at %v", h.Cusps[0].Longitude)
	}
	if math.Abs(h.Cusps[1].Longitude-(50.97615091385478+33.730443261733846)) > 1e-6 {
		t.Errorf("house 2 at %v", h.Cusps[1].Longitude)
	}
}

func TestNewCalculatorRejectsUnsupportedBodies(t *testing.T) {
	_, err := NewCalculator(WithEngine(KeplerEngine{}), WithBodies(BodySetExtended, ExtendedBodies))
	if !errors.Is(err, ErrUnsupportedBody) {
		t.Errorf("kepler with asteroids err = %v, want ErrUnsupportedBody", err)
	}

	_, err = NewCalculator(WithBodies("none", nil))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty body set err = %v, want ErrInvalidInput", err)
	}
}

func TestKeplerCalculator(t *testing.T) {
	c, err := NewCalculator(WithEngine(KeplerEngine{}), WithScorer(MajorMinorScorer{}))
	if err != nil {
		t.Fatal(err)
	}
	if c.EngineName() != EngineKepler || c.ScorerName() != ScoringMajorMinor {
		t.Errorf("engine/scorer = %s/%s", c.EngineName(), c.ScorerName())
	}

	// 2000-01-01 12:00 UTC: Sun in Capricorn, Moon in Scorpio
	chart, err := c.NatalChart(BirthData{
		Date: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Time: "12:00",
	})
	if err != nil {
		t.Fatalf("NatalChart: %v", err)
	}
	if chart.SunSign != Capricorn || chart.MoonSign != Scorpio {
		t.Errorf("sun/moon = %s/%s, want %s/%s", chart.SunSign, chart.MoonSign, Capricorn, Scorpio)
	}
	if chart.Engine != EngineKepler {
		t.Errorf("Engine = %q, want %q", chart.Engine, EngineKepler)
	}
}

func TestKeplerCalculatorUsesTimezone(t *testing.T) {
	c, err := NewCalculator(WithEngine(KeplerEngine{}))
	if err != nil {
		t.Fatal(err)
	}

	utc := BirthData{Date: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), Time: "12:00", Location: "X"}
	tokyo := utc
	tokyo.Timezone = "Asia/Tokyo"

	a, err := c.NatalChart(utc)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.NatalChart(tokyo)
	if err != nil {
		t.Fatal(err)
	}

	moonA, _ := a.ChartData.Get("moon")
	moonB, _ := b.ChartData.Get("moon")
	// nine hours earlier; the Moon is slow near apogee here
	if d := Normalize(moonA.Longitude - moonB.Longitude); math.Abs(d-4.49) > 0.05 {
		t.Errorf("moon moved %v in nine hours, want about 4.49", d)
	}
	if a.Fingerprint == b.Fingerprint {
		t.Error("timezone did not change the fingerprint")
	}
}
