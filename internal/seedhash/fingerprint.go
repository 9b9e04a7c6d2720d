package seedhash

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
)

// UnknownTime marks a missing birth time in fingerprints.
const UnknownTime = "unknown"

// ChartFingerprint computes a deterministic identifier for a set of birth data.
// Formula: base58(SHA256(date|time|location|timezone|engine|bodies))
// Two requests with the same fingerprint produce the same natal chart. An
// unknown time is recorded as UnknownTime, not DefaultTime: it shares the
// midnight seed but not the ascendant.
func ChartFingerprint(
	date time.Time,
	timeStr string,
	location string,
	timezone string,
	engine string,
	bodies string,
) string {
	if timeStr == "" {
		timeStr = UnknownTime
	}
	if timezone == "" {
		timezone = "UTC"
	}

	data := fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		date.Format(time.DateOnly),
		timeStr,
		location,
		timezone,
		engine,
		bodies,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
