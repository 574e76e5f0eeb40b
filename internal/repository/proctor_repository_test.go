package repository

import "testing"

func TestPrettyViolation(t *testing.T) {
	cases := []struct {
		kind string
		want string
	}{
		{"video_feed", "Active"},
		{"tab_switch", "Tab switch detected"},
		{"multiple_faces", "multiple faces"},
		{"phone_detected", "phone detected"},
		{"noise", "noise"},
	}
	for _, tc := range cases {
		if got := PrettyViolation(tc.kind); got != tc.want {
			t.Errorf("PrettyViolation(%q) = %q, want %q", tc.kind, got, tc.want)
		}
	}
}
