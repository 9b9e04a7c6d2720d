package domain

import (
	"testing"
	"time"
)

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score int
		want  IntensityLevel
	}{
		{1, IntensityLow},
		{24, IntensityLow},
		{25, IntensityMedium},
		{49, IntensityMedium},
		{50, IntensityHigh},
		{74, IntensityHigh},
		{75, IntensityIntense},
		{100, IntensityIntense},
	}

	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
		if !tt.want.IsValid() {
			t.Errorf("%s should be valid", tt.want)
		}
	}
}

func TestToneIsValid(t *testing.T) {
	for _, tone := range Tones {
		if !tone.IsValid() {
			t.Errorf("%s should be valid", tone)
		}
	}
	if Tone("sarcastic").IsValid() {
		t.Error("unknown tone reported valid")
	}
	if IntensityLevel("extreme").IsValid() {
		t.Error("unknown level reported valid")
	}
}

func TestNewUserDefaults(t *testing.T) {
	u := NewUser("galen", mustDate(t, "1990-01-15"), "14:30", "Taipei, Taiwan", "Asia/Taipei")
	if u.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a generated ID")
	}
	if u.PreferredTone != ToneInspiring || !u.DailyGCodeEnabled {
		t.Errorf("unexpected defaults: %+v", u)
	}
	if u.CreatedAt == 0 || u.CreatedAt != u.UpdatedAt {
		t.Errorf("timestamps not initialised: %d %d", u.CreatedAt, u.UpdatedAt)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}
