package model

import (
	"time"

	"github.com/quantumprov/qprov/internal/timestamp"
)

// IsValid reports whether the snapshot is still fresh at the given instant:
// true iff now is strictly before valid_until. At now == valid_until the
// snapshot is already expired.
//
// This is the lenient predicate: a malformed valid_until conservatively
// yields false (treat an unparseable calibration as invalid) instead of an
// error. Use timestamp.Parse directly to detect parse failure.
func (c CalibrationData) IsValid(now time.Time) bool {
	validUntil, err := timestamp.Parse(c.ValidUntil)
	if err != nil {
		return false
	}
	return now.UTC().Before(validUntil)
}

// AgeSeconds returns the elapsed seconds between timestamp_captured and the
// given instant.
//
// A malformed captured timestamp yields 0.0, not an error; callers must not
// use AgeSeconds to detect parse failure.
func (c CalibrationData) AgeSeconds(now time.Time) float64 {
	captured, err := timestamp.Parse(c.TimestampCaptured)
	if err != nil {
		return 0.0
	}
	return now.UTC().Sub(captured).Seconds()
}
