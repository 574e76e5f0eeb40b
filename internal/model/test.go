package model

import "time"

// TestKind enumerates the supported question formats of a test.
type TestKind string

const (
	TestKindObjective  TestKind = "objective"
	TestKindSubjective TestKind = "subjective"
	TestKindPractical  TestKind = "practical"
)

// ProctorMode enumerates how a test is supervised.
type ProctorMode string

const (
	ProctorModeAutomated ProctorMode = "automated"
	ProctorModeLive      ProctorMode = "live"
)

// Test represents a scheduled exam. The window is [StartAt, EndAt):
// a student may begin at StartAt but not at or after EndAt.
type Test struct {
	TestID           string      `json:"test_id"`
	ProfessorID      int         `json:"professor_id"`
	Subject          string      `json:"subject"`
	Topic            string      `json:"topic"`
	Kind             TestKind    `json:"kind"`
	StartAt          time.Time   `json:"start_at"`
	EndAt            time.Time   `json:"end_at"`
	DurationSeconds  int         `json:"duration_seconds"`
	Password         string      `json:"-"`
	ProctorMode      ProctorMode `json:"proctor_mode"`
	NegativeMarking  bool        `json:"negative_marking"`
	Compiler         string      `json:"compiler,omitempty"`
	ResultsPublished bool        `json:"results_published"`
	CreatedAt        time.Time   `json:"created_at"`
}

// CreateObjectiveTestRequest is the payload for scheduling an
// objective (multiple choice) test.
type CreateObjectiveTestRequest struct {
	Subject         string                   `json:"subject" binding:"required,min=1,max=200"`
	Topic           string                   `json:"topic" binding:"required,min=1,max=200"`
	StartAt         time.Time                `json:"start_at" binding:"required"`
	EndAt           time.Time                `json:"end_at" binding:"required,gtfield=StartAt"`
	DurationSeconds int                      `json:"duration_seconds" binding:"required,min=60"`
	Password        string                   `json:"password" binding:"required,min=4,max=50"`
	ProctorMode     string                   `json:"proctor_mode" binding:"required,oneof=automated live"`
	NegativeMarking bool                     `json:"negative_marking"`
	Questions       []ObjectiveQuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// CreateSubjectiveTestRequest is the payload for scheduling a
// subjective (long answer) test.
type CreateSubjectiveTestRequest struct {
	Subject         string                    `json:"subject" binding:"required,min=1,max=200"`
	Topic           string                    `json:"topic" binding:"required,min=1,max=200"`
	StartAt         time.Time                 `json:"start_at" binding:"required"`
	EndAt           time.Time                 `json:"end_at" binding:"required,gtfield=StartAt"`
	DurationSeconds int                       `json:"duration_seconds" binding:"required,min=60"`
	Password        string                    `json:"password" binding:"required,min=4,max=50"`
	ProctorMode     string                    `json:"proctor_mode" binding:"required,oneof=automated live"`
	Questions       []SubjectiveQuestionInput `json:"questions" binding:"required,min=1,dive"`
}

// CreatePracticalTestRequest is the payload for scheduling a practical
// (coding) test graded against hidden test cases.
type CreatePracticalTestRequest struct {
	Subject         string                   `json:"subject" binding:"required,min=1,max=200"`
	Topic           string                   `json:"topic" binding:"required,min=1,max=200"`
	StartAt         time.Time                `json:"start_at" binding:"required"`
	EndAt           time.Time                `json:"end_at" binding:"required,gtfield=StartAt"`
	DurationSeconds int                      `json:"duration_seconds" binding:"required,min=60"`
	Password        string                   `json:"password" binding:"required,min=4,max=50"`
	ProctorMode     string                   `json:"proctor_mode" binding:"required,oneof=automated live"`
	Compiler        string                   `json:"compiler" binding:"required"`
	Questions       []PracticalQuestionInput `json:"questions" binding:"required,len=1,dive"`
}

// ShareTestRequest emails a test ID and password to a list of students.
type ShareTestRequest struct {
	TestID string   `json:"test_id" binding:"required"`
	Emails []string `json:"emails" binding:"required,min=1,dive,email"`
}

// MarkEntry is a single row of a professor's manual marks upload.
type MarkEntry struct {
	Email string `json:"email" binding:"required,email"`
	Marks string `json:"marks" binding:"required"`
}

// UploadMarksRequest records externally graded marks for a test.
type UploadMarksRequest struct {
	TestID string      `json:"test_id" binding:"required"`
	Rows   []MarkEntry `json:"rows" binding:"required,min=1,dive"`
}
