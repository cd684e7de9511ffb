// Package timestamp parses and formats the ISO-8601 strings used throughout
// experiment metadata records.
//
// Two calling conventions exist and the distinction is deliberate:
//   - Parse is the strict parser. Malformed input returns an error.
//   - Lenient predicates built on top of it (calibration validity, age)
//     degrade to safe defaults instead of propagating parse errors.
//
// Parse tolerates the timestamp dialects seen in real provider payloads:
// a trailing "Z", an explicit "+00:00" offset, no offset at all (assumed
// UTC), and the malformed double-offset form where a redundant "+00:00"
// was appended after an already-valid offset.
package timestamp

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical output form: UTC with microsecond precision and
// a trailing "Z". Writers must not produce any other dialect.
const Layout = "2006-01-02T15:04:05.000000Z"

// naiveLayout matches timestamps with no UTC offset. The fractional part
// is optional.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Format renders t in the canonical UTC form.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse converts an ISO-8601 string to a UTC time.Time.
//
// Accepted forms, in addition to strict RFC 3339:
//   - trailing "Z" and explicit "+00:00" are equivalent
//   - a timestamp with no offset is assumed UTC
//   - a redundant "+00:00" appended after a valid offset is stripped
//
// Anything else is an error. Callers that need a lenient predicate must
// catch the error themselves; Parse never degrades silently.
func Parse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("parse timestamp: empty string")
	}

	n := normalize(s)

	if t, err := time.Parse(time.RFC3339Nano, n); err == nil {
		return t.UTC(), nil
	}

	// No offset at all: assume UTC.
	if t, err := time.Parse(naiveLayout, n); err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("parse timestamp %q: unrecognized ISO-8601 form", s)
}

// normalize rewrites tolerated dialects into strict RFC 3339 form.
func normalize(s string) string {
	// "Z" and "+00:00" are the same instant; keep one spelling.
	if strings.HasSuffix(s, "Z") {
		s = s[:len(s)-1] + "+00:00"
	}

	// Redundant double offset: "...-03:00+00:00" or "...+0200+00:00".
	// If the string ends in "+00:00" and the part before it already ends
	// in an offset, the final "+00:00" is a writer bug; strip it.
	if strings.HasSuffix(s, "+00:00") {
		pre := s[:len(s)-6]
		if len(pre) > 6 && (hasSign(pre, 6) || hasSign(pre, 5)) {
			s = pre
		}
	}

	return s
}

// hasSign reports whether the byte n positions from the end of s is an
// offset sign. Colons in the time-of-day part never collide with these
// positions for well-formed offsets ("+HH:MM" or "+HHMM").
func hasSign(s string, n int) bool {
	c := s[len(s)-n]
	return c == '+' || c == '-'
}
