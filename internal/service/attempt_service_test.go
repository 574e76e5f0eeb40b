package service

import (
	"testing"
	"time"
)

func TestWithinWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before start", start.Add(-time.Second), false},
		{"exactly at start", start, true},
		{"middle of window", start.Add(time.Hour), true},
		{"just before end", end.Add(-time.Second), true},
		{"exactly at end", end, false},
		{"after end", end.Add(time.Minute), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WithinWindow(tc.now, start, end); got != tc.want {
				t.Errorf("WithinWindow(%v) = %t, want %t", tc.now, got, tc.want)
			}
		})
	}
}

func TestRemainingSeconds(t *testing.T) {
	startTime := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		duration int
		now      time.Time
		want     int
	}{
		{"nothing elapsed", 3600, startTime, 3600},
		{"half elapsed", 3600, startTime.Add(30 * time.Minute), 1800},
		{"fully elapsed", 3600, startTime.Add(time.Hour), 0},
		{"overrun floors at zero", 3600, startTime.Add(2 * time.Hour), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RemainingSeconds(startTime, tc.duration, tc.now); got != tc.want {
				t.Errorf("RemainingSeconds = %d, want %d", got, tc.want)
			}
		})
	}
}
