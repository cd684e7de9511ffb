// Package clock provides the wall-clock dependency for time-sensitive
// operations (calibration validity, age computation, timestamp generation).
//
// Core packages never call time.Now directly. Every operation that needs
// the current time takes a Clock (or an explicit time.Time), so tests can
// substitute a manual clock and validity checks become deterministic.
package clock

import "time"

// Clock supplies the current UTC time.
type Clock interface {
	Now() time.Time
}

// System is the production clock backed by the OS wall clock.
type System struct{}

// Now returns the current time in UTC.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed returns a Clock pinned to a single instant. Callers that compute a
// simulated time and need to pass it through a Clock-taking API use this
// instead of faking a clock type of their own.
func Fixed(t time.Time) Clock {
	return fixed(t.UTC())
}

type fixed time.Time

func (f fixed) Now() time.Time {
	return time.Time(f)
}
