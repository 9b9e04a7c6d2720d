package gcode

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/seedhash"
)

// Reading is the input of an Interpreter.
type Reading struct {
	Natal    *astro.NatalChart
	Transits *astro.TransitResult
	Score    int
	Level    domain.IntensityLevel
	Tone     domain.Tone
}

// Interpreter turns a scored reading into narrative text.
// Implementations may call an external text generator.
type Interpreter interface {
	Interpret(ctx context.Context, r Reading) (domain.Interpretation, error)
}

// themePool is drawn from after the sign and aspect themes.
var themePool = []string{
	"#Transformation", "#Growth", "#Alignment", "#InnerWisdom", "#CosmicEnergy",
	"#Intuition", "#Creativity", "#Balance", "#Release", "#Manifestation",
	"#Healing", "#Connection", "#Clarity", "#Purpose", "#Harmony",
}

var aspectThemes = map[astro.AspectKind]string{
	astro.Conjunction: "#Transformation",
	astro.Opposition:  "#Balance",
	astro.Square:      "#Release",
	astro.Trine:       "#Harmony",
	astro.Sextile:     "#Connection",
}

var levelWeather = map[domain.IntensityLevel]string{
	domain.IntensityLow:     "gentle and peaceful",
	domain.IntensityMedium:  "moderately active",
	domain.IntensityHigh:    "dynamic and transformative",
	domain.IntensityIntense: "intense and powerful",
}

// voice holds the tone-specific wording.
type voice struct {
	opening string
	body    func(sun, moon astro.Sign) string
	closing string
}

var voices = map[domain.Tone]voice{
	domain.ToneInspiring: {
		opening: "Today's cosmic weather is %s.",
		body: func(sun, moon astro.Sign) string {
			return fmt.Sprintf("With your Sun in %s and Moon in %s, you're being called to embrace your authentic power and trust your inner knowing.", sun, moon)
		},
		closing: "Trust that the universe is conspiring in your favor.",
	},
	domain.TonePractical: {
		opening: "Expect a %s day.",
		body: func(sun, moon astro.Sign) string {
			return fmt.Sprintf("Your %s Sun sets the agenda and your %s Moon sets the pace. Plan around both.", sun, moon)
		},
		closing: "Pick one priority and finish it.",
	},
	domain.TonePoetic: {
		opening: "The sky moves %s today.",
		body: func(sun, moon astro.Sign) string {
			return fmt.Sprintf("Sun in %s, Moon in %s: light and tide meet where you stand.", sun, moon)
		},
		closing: "Let the quiet hours carry what words cannot.",
	},
	domain.ToneTechnical: {
		opening: "Transit intensity band: %s.",
		body: func(sun, moon astro.Sign) string {
			return fmt.Sprintf("Natal Sun %s, natal Moon %s.", sun, moon)
		},
		closing: "Tightest aspects listed above carry the most weight.",
	},
}

// ThemeInterpreter derives an Interpretation from the reading alone.
// Identical readings always yield identical text.
type ThemeInterpreter struct{}

var _ Interpreter = ThemeInterpreter{}

// Interpret builds themes, text, affirmation and guidance for r.
func (ThemeInterpreter) Interpret(_ context.Context, r Reading) (domain.Interpretation, error) {
	if r.Natal == nil || r.Transits == nil {
		return domain.Interpretation{}, fmt.Errorf("interpret: natal chart and transits are required")
	}
	v, ok := voices[r.Tone]
	if !ok {
		v = voices[domain.ToneInspiring]
	}

	p := newPicker(seedhash.Seed(r.Transits.Date, "", r.Natal.Fingerprint))
	themes := pickThemes(r, p)

	var text strings.Builder
	fmt.Fprintf(&text, v.opening, levelWeather[r.Level])
	text.WriteString("\n\n")
	text.WriteString(v.body(r.Natal.SunSign, r.Natal.MoonSign))
	text.WriteString("\n\nKey energies at play:\n")
	for _, t := range themes[2:] {
		fmt.Fprintf(&text, "  - %s\n", strings.TrimPrefix(t, "#"))
	}
	for _, a := range strongest(r.Transits.Aspects, 3) {
		fmt.Fprintf(&text, "  - transit %s %s natal %s (orb %.1f°)\n", a.BodyA, a.Kind, a.BodyB, a.Orb)
	}
	text.WriteString("\n")
	text.WriteString(v.closing)

	return domain.Interpretation{
		Themes:            themes,
		Interpretation:    text.String(),
		Affirmation:       pickAffirmation(r.Natal.SunSign, themes, p),
		PracticalGuidance: pickGuidance(themes, p),
	}, nil
}

// pickThemes returns the sun and moon themes, then up to three more:
// first from the kinds of the strongest aspects, then from the pool.
func pickThemes(r Reading, p *picker) []string {
	themes := []string{
		fmt.Sprintf("#%sSeason", r.Natal.SunSign),
		fmt.Sprintf("#%sEnergy", r.Natal.MoonSign),
	}
	seen := map[string]bool{themes[0]: true, themes[1]: true}

	for _, a := range strongest(r.Transits.Aspects, len(r.Transits.Aspects)) {
		if len(themes) == 5 {
			break
		}
		t := aspectThemes[a.Kind]
		if t != "" && !seen[t] {
			themes = append(themes, t)
			seen[t] = true
		}
	}

	var available []string
	for _, t := range themePool {
		if !seen[t] {
			available = append(available, t)
		}
	}
	for len(themes) < 5 && len(available) > 0 {
		i := p.intn(len(available))
		themes = append(themes, available[i])
		available = append(available[:i], available[i+1:]...)
	}
	return themes
}

func pickAffirmation(sun astro.Sign, themes []string, p *picker) string {
	affirmations := []string{
		fmt.Sprintf("I am aligned with the transformative power of %s.", sun),
		"I trust my inner wisdom and embrace change with grace.",
		"I am worthy of all the abundance flowing into my life.",
		"I release what no longer serves me and welcome new beginnings.",
		"I am connected to universal wisdom and cosmic guidance.",
		fmt.Sprintf("I radiate %s energy and attract positive experiences.", strings.TrimPrefix(themes[2], "#")),
		"I honor my journey and celebrate how far I've come.",
		"I am open to receiving the gifts the universe has for me.",
		"I embrace my power and create the life I desire.",
		"I am grounded, centered, and aligned with my purpose.",
	}
	return affirmations[p.intn(len(affirmations))]
}

func pickGuidance(themes []string, p *picker) []string {
	pool := []string{
		fmt.Sprintf("Take time for meditation and connect with %s energy.", strings.TrimPrefix(themes[2], "#")),
		"Journal your thoughts and insights from the day.",
		"Practice gratitude for three specific things in your life.",
		"Set a clear intention for what you want to create.",
		"Connect with nature and ground your energy.",
		"Express yourself creatively without judgment.",
		"Reach out to someone who inspires you.",
		"Take a break from social media and be present.",
		"Do something that brings you joy and laughter.",
		"Review your goals and adjust your course if needed.",
	}
	out := make([]string, 0, 3)
	for len(out) < 3 {
		i := p.intn(len(pool))
		out = append(out, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return out
}

// strongest returns up to n aspects ordered by ascending orb.
// Ties keep detection order.
func strongest(aspects []astro.Aspect, n int) []astro.Aspect {
	sorted := make([]astro.Aspect, len(aspects))
	copy(sorted, aspects)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Orb < sorted[j].Orb })
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// picker is a splitmix64 sequence seeded from a chart seed.
type picker struct {
	state uint64
}

func newPicker(seed float64) *picker {
	return &picker{state: uint64(seed * 1e9)}
}

func (p *picker) next() uint64 {
	p.state += 0x9e3779b97f4a7c15
	z := p.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (p *picker) intn(n int) int {
	return int(p.next() % uint64(n))
}
