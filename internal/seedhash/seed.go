// Package seedhash derives deterministic values from birth data.
//
// Every function here is a pure function of its string inputs. The digests
// used (MD5 for seeds, SHA-256 for fingerprints) have stable output across
// processes and platforms, so persisted reference values stay valid.
package seedhash

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"time"
)

// DefaultTime is substituted when no birth time is known.
const DefaultTime = "00:00"

// DefaultLocation is substituted when no location is known.
const DefaultLocation = "Unknown"

// SeedScale maps a 32-bit unsigned integer into roughly [0, 100).
const SeedScale = 42949672.95

// Canonical builds the seed input string.
// Format: {YYYY-MM-DD}_{HH:MM or 00:00}_{location}
func Canonical(date time.Time, timeStr string, location string) string {
	if timeStr == "" {
		timeStr = DefaultTime
	}
	return fmt.Sprintf("%s_%s_%s", date.Format(time.DateOnly), timeStr, location)
}

// Seed computes the deterministic seed for (date, time, location).
// The first 4 bytes of MD5(Canonical(...)) are read big-endian (identical to
// parsing the first 8 hex characters) and divided by SeedScale.
func Seed(date time.Time, timeStr string, location string) float64 {
	sum := md5.Sum([]byte(Canonical(date, timeStr, location)))
	return float64(binary.BigEndian.Uint32(sum[:4])) / SeedScale
}

// DateSeed computes the seed used for a sky that does not depend on any
// birth data (transits): default time and default location.
func DateSeed(date time.Time) float64 {
	return Seed(date, "", DefaultLocation)
}
