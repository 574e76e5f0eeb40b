package model

import (
	"encoding/json"
	"time"
)

// ProctorEvent is a persisted proctoring observation. Camera-based
// events (face count, gaze, audio) and window events (tab switches,
// fullscreen exits) are stored in separate tables but share this shape.
type ProctorEvent struct {
	ID         int64           `json:"id"`
	TestID     string          `json:"test_id"`
	StudentID  int             `json:"student_id"`
	Kind       string          `json:"kind"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// VideoFeedRequest reports a camera frame analysis outcome. An empty
// violation means the frame was clean and only proves liveness.
type VideoFeedRequest struct {
	TestID    string          `json:"test_id" binding:"required"`
	Violation string          `json:"violation"`
	Detail    json.RawMessage `json:"detail"`
}

// WindowEventRequest reports a browser window integrity event.
type WindowEventRequest struct {
	TestID string          `json:"test_id" binding:"required"`
	Event  string          `json:"event" binding:"required"`
	Detail json.RawMessage `json:"detail"`
}

// MonitorEntry is one row of the live monitoring or log view: an event
// joined with student identity and rendered into display text.
type MonitorEntry struct {
	StudentID  int       `json:"student_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Display    string    `json:"display"`
	RecordedAt time.Time `json:"recorded_at"`
}
