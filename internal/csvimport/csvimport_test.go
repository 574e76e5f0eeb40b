package csvimport

import (
	"strings"
	"testing"
)

const validCSV = `Question,Option A,Option B,Option C,Option D,Correct Answer
What is 2+2?,1,2,3,4,4
Capital of France?,Paris,London,Berlin,Rome,Paris
`

func TestParseObjectiveQuestions(t *testing.T) {
	questions, err := ParseObjectiveQuestions(strings.NewReader(validCSV))
	if err != nil {
		t.Fatalf("ParseObjectiveQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if questions[0].Prompt != "What is 2+2?" || questions[0].Answer != "4" {
		t.Errorf("unexpected first question: %+v", questions[0])
	}
	if questions[1].OptionD != "Rome" {
		t.Errorf("OptionD = %q, want Rome", questions[1].OptionD)
	}
}

func TestParseCaseInsensitiveHeader(t *testing.T) {
	csv := `question,option a,OPTION B,Option C,Option D,correct answer
Q1,a,b,c,d,a
`
	questions, err := ParseObjectiveQuestions(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseObjectiveQuestions: %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("got %d questions, want 1", len(questions))
	}
}

func TestParseBadHeader(t *testing.T) {
	csv := `Question,A,B,C,D,Answer
Q1,a,b,c,d,a
`
	if _, err := ParseObjectiveQuestions(strings.NewReader(csv)); err == nil {
		t.Error("expected error for wrong header")
	}
}

func TestParseSkipsIncompleteRows(t *testing.T) {
	csv := `Question,Option A,Option B,Option C,Option D,Correct Answer
Q1,a,b,c,d,a
Q2,a,b
Q3,a,b,c,,c
Q4,a,b,c,d,b
`
	questions, err := ParseObjectiveQuestions(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseObjectiveQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2 (incomplete rows skipped)", len(questions))
	}
	if questions[1].Prompt != "Q4" {
		t.Errorf("second question prompt = %q, want Q4", questions[1].Prompt)
	}
}

func TestParseAllRowsInvalid(t *testing.T) {
	csv := `Question,Option A,Option B,Option C,Option D,Correct Answer
Q1,a,b
`
	if _, err := ParseObjectiveQuestions(strings.NewReader(csv)); err == nil {
		t.Error("expected error when no valid rows remain")
	}
}
