package domain

// Tone is the voice used for Daily G-Code interpretations.
type Tone string

const (
	ToneInspiring Tone = "inspiring"
	TonePractical Tone = "practical"
	TonePoetic    Tone = "poetic"
	ToneTechnical Tone = "technical"
)

// Tones lists every valid tone.
var Tones = []Tone{ToneInspiring, TonePractical, TonePoetic, ToneTechnical}

// String returns the string representation of Tone.
func (t Tone) String() string {
	return string(t)
}

// IsValid checks if the tone is a valid value.
func (t Tone) IsValid() bool {
	for _, v := range Tones {
		if t == v {
			return true
		}
	}
	return false
}
