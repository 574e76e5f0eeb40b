package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

func newJSONContext(t *testing.T, payload any) *gin.Context {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", bytes.NewReader(data))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func objectivePayload(startAt, endAt time.Time) map[string]any {
	return map[string]any{
		"subject":          "Mathematics",
		"topic":            "Arithmetic",
		"start_at":         startAt.Format(time.RFC3339),
		"end_at":           endAt.Format(time.RFC3339),
		"duration_seconds": 600,
		"password":         "exam1234",
		"proctor_mode":     "automated",
		"questions": []map[string]any{
			{"prompt": "2+2?", "option_a": "3", "option_b": "4", "option_c": "5", "option_d": "6", "answer": "4"},
		},
	}
}

func TestCreateTestWindowOrdering(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	tests := []struct {
		name    string
		startAt time.Time
		endAt   time.Time
		wantErr bool
	}{
		{"end after start", now, now.Add(time.Hour), false},
		{"end equals start", now, now, true},
		{"end before start", now.Add(time.Hour), now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newJSONContext(t, objectivePayload(tt.startAt, tt.endAt))

			var req model.CreateObjectiveTestRequest
			fields := validator.Bind(c, &req)

			if tt.wantErr {
				if fields == nil {
					t.Fatal("binding accepted a window that never opens")
				}
				if _, ok := fields["end_at"]; !ok {
					t.Errorf("fields = %v, want an end_at error", fields)
				}
			} else if fields != nil {
				t.Errorf("fields = %v, want none", fields)
			}
		})
	}
}

func TestBindTestMetaFormWindowOrdering(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	newFormContext := func(startAt, endAt time.Time) *gin.Context {
		form := url.Values{}
		form.Set("subject", "Mathematics")
		form.Set("topic", "Arithmetic")
		form.Set("start_at", startAt.Format(time.RFC3339))
		form.Set("end_at", endAt.Format(time.RFC3339))
		form.Set("duration_seconds", "600")
		form.Set("password", "exam1234")
		form.Set("proctor_mode", "automated")

		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("POST", "/", strings.NewReader(form.Encode()))
		c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return c
	}

	req, fields := bindTestMetaForm(newFormContext(now, now.Add(time.Hour)))
	if fields != nil {
		t.Fatalf("valid form rejected: %v", fields)
	}
	if !req.EndAt.After(req.StartAt) {
		t.Errorf("parsed window [%v, %v) out of order", req.StartAt, req.EndAt)
	}

	_, fields = bindTestMetaForm(newFormContext(now.Add(time.Hour), now))
	if fields == nil {
		t.Fatal("form accepted a window that never opens")
	}
	if _, ok := fields["end_at"]; !ok {
		t.Errorf("fields = %v, want an end_at error", fields)
	}
}
