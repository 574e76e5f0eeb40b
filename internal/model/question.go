package model

import "encoding/json"

// ObjectiveQuestion is a multiple choice question with four options.
// The correct answer is never serialized to students.
type ObjectiveQuestion struct {
	TestID  string `json:"test_id"`
	QID     int    `json:"qid"`
	Prompt  string `json:"prompt"`
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	OptionC string `json:"option_c"`
	OptionD string `json:"option_d"`
	Answer  string `json:"-"`
}

// SubjectiveQuestion is a free-text question graded manually.
type SubjectiveQuestion struct {
	TestID   string  `json:"test_id"`
	QID      int     `json:"qid"`
	Prompt   string  `json:"prompt"`
	MaxMarks float64 `json:"max_marks"`
}

// PracticalQuestion is a coding question graded by running the
// submission against hidden test cases.
type PracticalQuestion struct {
	TestID    string          `json:"test_id"`
	QID       int             `json:"qid"`
	Prompt    string          `json:"prompt"`
	Compiler  string          `json:"compiler"`
	TestCases json.RawMessage `json:"-"`
	MaxMarks  float64         `json:"max_marks"`
}

// TestCase is a single stdin/expected-stdout pair for a practical
// question.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// ObjectiveQuestionInput is one question row when creating an
// objective test.
type ObjectiveQuestionInput struct {
	Prompt  string `json:"prompt" binding:"required,min=1,max=2000"`
	OptionA string `json:"option_a" binding:"required"`
	OptionB string `json:"option_b" binding:"required"`
	OptionC string `json:"option_c" binding:"required"`
	OptionD string `json:"option_d" binding:"required"`
	Answer  string `json:"answer" binding:"required"`
}

// SubjectiveQuestionInput is one question row when creating a
// subjective test.
type SubjectiveQuestionInput struct {
	Prompt   string  `json:"prompt" binding:"required,min=1,max=5000"`
	MaxMarks float64 `json:"max_marks" binding:"required,gt=0"`
}

// PracticalQuestionInput is one question row when creating a
// practical test.
type PracticalQuestionInput struct {
	Prompt    string     `json:"prompt" binding:"required,min=1,max=5000"`
	TestCases []TestCase `json:"test_cases" binding:"required,min=1,dive"`
	MaxMarks  float64    `json:"max_marks" binding:"required,gt=0"`
}
