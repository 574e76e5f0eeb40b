package model

import "time"

// Result is the frozen total for one submitted attempt.
type Result struct {
	TestID      string    `json:"test_id"`
	StudentID   int       `json:"student_id"`
	TotalMarks  float64   `json:"total_marks"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// StudentResult is a result row joined with student identity, as shown
// to professors.
type StudentResult struct {
	StudentID   int       `json:"student_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	TotalMarks  float64   `json:"total_marks"`
	SubmittedAt time.Time `json:"submitted_at"`
}
