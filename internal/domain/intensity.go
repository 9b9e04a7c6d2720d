package domain

// IntensityLevel is the coarse band of a G-Code score.
type IntensityLevel string

const (
	IntensityLow     IntensityLevel = "low"
	IntensityMedium  IntensityLevel = "medium"
	IntensityHigh    IntensityLevel = "high"
	IntensityIntense IntensityLevel = "intense"
)

// LevelForScore maps a score in [1, 100] to its band:
// below 25 low, below 50 medium, below 75 high, otherwise intense.
func LevelForScore(score int) IntensityLevel {
	switch {
	case score < 25:
		return IntensityLow
	case score < 50:
		return IntensityMedium
	case score < 75:
		return IntensityHigh
	default:
		return IntensityIntense
	}
}

// String returns the string representation of IntensityLevel.
func (l IntensityLevel) String() string {
	return string(l)
}

// IsValid checks if the level is a valid value.
func (l IntensityLevel) IsValid() bool {
	switch l {
	case IntensityLow, IntensityMedium, IntensityHigh, IntensityIntense:
		return true
	}
	return false
}
