package astro

import "fmt"

const (
	BaseIntensity = 50
	MinIntensity  = 1
	MaxIntensity  = 100

	outerTransitBonus = 7
	moonTransitBonus  = 4
)

// Scorer reduces transit aspects into an intensity in [1, 100].
// Implementations must be monotonic: adding an aspect never lowers the score.
type Scorer interface {
	Name() string
	Score(transits ChartData, aspects []Aspect) int
}

// Scorer names accepted by ScorerByName.
const (
	ScoringWeighted   = "weighted"
	ScoringMajorMinor = "major_minor"
)

// ScorerByName returns the named scoring scheme.
func ScorerByName(name string) (Scorer, error) {
	switch name {
	case "", ScoringWeighted:
		return WeightedScorer{}, nil
	case ScoringMajorMinor:
		return MajorMinorScorer{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown scoring %q", ErrInvalidInput, name)
	}
}

// WeightedScorer is the default scheme: a per-kind weight for every aspect,
// plus bonuses when the transiting body is an outer planet or the Moon.
type WeightedScorer struct{}

var aspectWeights = map[AspectKind]int{
	Conjunction: 10,
	Opposition:  8,
	Square:      6,
	Trine:       4,
	Sextile:     2,
}

func (WeightedScorer) Name() string { return ScoringWeighted }

func (WeightedScorer) Score(_ ChartData, aspects []Aspect) int {
	return scoreWith(aspects, func(k AspectKind) int { return aspectWeights[k] })
}

// MajorMinorScorer is the coarse scheme: +5 for conjunction, opposition and
// square, +3 for trine and sextile, with the same transit body bonuses.
type MajorMinorScorer struct{}

func (MajorMinorScorer) Name() string { return ScoringMajorMinor }

func (MajorMinorScorer) Score(_ ChartData, aspects []Aspect) int {
	return scoreWith(aspects, func(k AspectKind) int {
		switch k {
		case Conjunction, Opposition, Square:
			return 5
		case Trine, Sextile:
			return 3
		}
		return 0
	})
}

func scoreWith(aspects []Aspect, weight func(AspectKind) int) int {
	score := BaseIntensity
	for _, a := range aspects {
		score += weight(a.Kind)
		if isOuterBody(a.BodyA) {
			score += outerTransitBonus
		}
		if a.BodyA == Moon.ID {
			score += moonTransitBonus
		}
	}
	return ClampIntensity(score)
}

func isOuterBody(id string) bool {
	return id == Uranus.ID || id == Neptune.ID || id == Pluto.ID
}

// ClampIntensity bounds a raw score to [MinIntensity, MaxIntensity].
func ClampIntensity(score int) int {
	if score < MinIntensity {
		return MinIntensity
	}
	if score > MaxIntensity {
		return MaxIntensity
	}
	return score
}
