package timestamp

import (
	"testing"
	"time"
)

func TestParse_Dialects(t *testing.T) {
	want := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"trailing Z", "2026-01-15T09:30:00Z", want},
		{"explicit offset", "2026-01-15T09:30:00+00:00", want},
		{"no offset assumed UTC", "2026-01-15T09:30:00", want},
		{"microseconds with Z", "2026-01-15T09:30:00.000000Z", want},
		{"non-UTC offset", "2026-01-15T06:30:00-03:00", want},
		{"redundant double offset", "2026-01-15T06:30:00-03:00+00:00", want},
		{"double offset after plus", "2026-01-15T11:30:00+02:00+00:00", want},
		{"naive with fraction", "2026-01-15T09:30:00.5", want.Add(500 * time.Millisecond)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("Parse(%q) location = %v, want UTC", tt.input, got.Location())
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"not a timestamp",
		"2026-13-40T99:99:99Z",
		"15/01/2026 09:30",
	}

	for _, input := range inputs {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
		}
	}
}

func TestFormat_Canonical(t *testing.T) {
	in := time.Date(2026, 1, 15, 9, 30, 0, 123456000, time.UTC)
	got := Format(in)
	want := "2026-01-15T09:30:00.123456Z"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormat_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	in := time.Date(2026, 1, 15, 4, 30, 0, 0, loc)
	got := Format(in)
	want := "2026-01-15T09:30:00.000000Z"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatParse_RoundTrip(t *testing.T) {
	in := time.Date(2026, 1, 15, 9, 30, 0, 123456000, time.UTC)
	got, err := Parse(Format(in))
	if err != nil {
		t.Fatalf("Parse(Format()) failed: %v", err)
	}
	if !got.Equal(in) {
		t.Errorf("round trip = %v, want %v", got, in)
	}
}
