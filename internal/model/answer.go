package model

// Answer is one graded answer row in the attempt ledger. Marks are
// assigned at write time for objective and practical questions and by
// the professor for subjective ones.
type Answer struct {
	TestID    string  `json:"test_id"`
	StudentID int     `json:"student_id"`
	QID       int     `json:"qid"`
	Answer    string  `json:"answer"`
	Marks     float64 `json:"marks"`
}
