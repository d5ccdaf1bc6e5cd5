package intent

import (
	"testing"
	"time"
)

func TestNormalizeDoctor(t *testing.T) {
	cases := map[string]string{
		"smith":              "Dr. Smith",
		"dr smith":           "Dr. Smith",
		"Dr. Smith":          "Dr. Smith",
		"doctor emily smith": "Dr. Smith",
		"SMITH":              "Dr. Smith",
		"":                   "",
	}
	for in, want := range cases {
		if got := NormalizeDoctor(in); got != want {
			t.Errorf("NormalizeDoctor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveDate(t *testing.T) {
	// Monday, March 2nd 2026.
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	cases := map[string]string{
		"today":        "2026-03-02",
		"tomorrow":     "2026-03-03",
		"next week":    "2026-03-09",
		"next tuesday": "2026-03-03",
		"friday":       "2026-03-06",
		"monday":       "2026-03-09", // same weekday rolls a full week forward
		"2026-06-04":   "2026-06-04",
		"June 4th":     "2026-06-04",
		"june 4":       "2026-06-04",
	}
	for in, want := range cases {
		if got := ResolveDate(in, now); got != want {
			t.Errorf("ResolveDate(%q) = %q, want %q", in, got, want)
		}
	}

	// Unparseable input passes through for downstream validation.
	if got := ResolveDate("whenever works", now); got != "whenever works" {
		t.Errorf("unparseable date mangled: %q", got)
	}
}

func TestResolveTime(t *testing.T) {
	cases := map[string]string{
		"3pm":     "15:00",
		"3 PM":    "15:00",
		"3:30 pm": "15:30",
		"12am":    "00:00",
		"12 p.m.": "12:00",
		"09:15":   "09:15",
		"15:04":   "15:04",
	}
	for in, want := range cases {
		if got := ResolveTime(in); got != want {
			t.Errorf("ResolveTime(%q) = %q, want %q", in, got, want)
		}
	}

	if got := ResolveTime("in the afternoon"); got != "in the afternoon" {
		t.Errorf("unparseable time mangled: %q", got)
	}
}
