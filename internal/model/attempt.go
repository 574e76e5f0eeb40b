package model

import "time"

// AttemptStatus enumerates attempt states. Transitions only move
// forward: not-started, started, submitted.
type AttemptStatus string

const (
	AttemptStatusNotStarted AttemptStatus = "not-started"
	AttemptStatusStarted    AttemptStatus = "started"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
)

// Attempt tracks one student's progress through one test.
type Attempt struct {
	TestID    string        `json:"test_id"`
	StudentID int           `json:"student_id"`
	Status    AttemptStatus `json:"status"`
	StartTime *time.Time    `json:"start_time,omitempty"`
	EndTime   *time.Time    `json:"end_time,omitempty"`
}

// GiveTestRequest is the payload for entering a test. Image is a
// base64 webcam capture matched against the student's reference face.
type GiveTestRequest struct {
	TestID   string `json:"test_id" binding:"required"`
	Password string `json:"password" binding:"required"`
	Image    string `json:"image"`
}

// TestActionRequest is the payload for the unified in-exam endpoint.
// Flag selects the operation: get returns attempt state, mark records
// an answer, bookmark toggles a bookmark, submit finalizes.
type TestActionRequest struct {
	TestID   string `json:"test_id" binding:"required"`
	Flag     string `json:"flag" binding:"required,oneof=get mark bookmark submit"`
	QID      int    `json:"qid"`
	Answer   string `json:"answer"`
	Bookmark string `json:"bookmark" binding:"omitempty,oneof=add remove"`
}
