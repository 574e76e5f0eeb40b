package service

import (
	"testing"

	"github.com/vigilo-labs/vigil-backend/internal/model"
)

func TestScoreObjective(t *testing.T) {
	cases := []struct {
		name            string
		raw             string
		correct         string
		negativeMarking bool
		want            float64
	}{
		{"exact match", "Option B", "Option B", false, 1},
		{"case insensitive", "option b", "Option B", false, 1},
		{"surrounding whitespace", "  Option B  ", "Option B", false, 1},
		{"wrong without penalty", "Option A", "Option B", false, 0},
		{"wrong with penalty", "Option A", "Option B", true, -0.25},
		{"correct with penalty on", "Option B", "Option B", true, 1},
		{"empty answer", "", "Option B", true, -0.25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreObjective(tc.raw, tc.correct, tc.negativeMarking)
			if got != tc.want {
				t.Errorf("ScoreObjective(%q, %q, %t) = %v, want %v",
					tc.raw, tc.correct, tc.negativeMarking, got, tc.want)
			}
		})
	}
}

func TestTotalMarks(t *testing.T) {
	answers := []model.Answer{
		{QID: 1, Marks: 1},
		{QID: 2, Marks: -0.25},
		{QID: 3, Marks: 0},
		{QID: 4, Marks: 1},
	}
	if got := TotalMarks(answers); got != 1.75 {
		t.Errorf("TotalMarks = %v, want 1.75", got)
	}

	if got := TotalMarks(nil); got != 0 {
		t.Errorf("TotalMarks(nil) = %v, want 0", got)
	}
}
