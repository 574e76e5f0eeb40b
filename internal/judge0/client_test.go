package judge0

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLanguageID(t *testing.T) {
	cases := []struct {
		compiler string
		want     int
	}{
		{"python3", LangPython3},
		{"python", LangPython3},
		{"c", LangC},
		{"cpp", LangCPP},
		{"c++", LangCPP},
		{"java", LangJava},
		{"", LangJava},
		{"unknown", LangJava},
	}
	for _, tc := range cases {
		if got := LanguageID(tc.compiler); got != tc.want {
			t.Errorf("LanguageID(%q) = %d, want %d", tc.compiler, got, tc.want)
		}
	}
}

func TestJudgePollsUntilFinal(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			var req submissionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode submission: %v", err)
			}
			if req.LanguageID != LangPython3 {
				t.Errorf("language_id = %d, want %d", req.LanguageID, LangPython3)
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(submissionToken{Token: "tok-1"})

		case r.Method == http.MethodGet:
			polls++
			res := SubmissionResult{}
			if polls < 2 {
				res.Status.ID = statusProcessing
			} else {
				res.Status.ID = StatusAccepted
			}
			json.NewEncoder(w).Encode(res)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	res, err := client.Judge(context.Background(), "print('hi')", LangPython3, "", "hi")
	if err != nil {
		t.Fatalf("Judge: %v", err)
	}
	if !res.Accepted() {
		t.Errorf("expected accepted verdict, got status %d", res.Status.ID)
	}
	if polls != 2 {
		t.Errorf("polled %d times, want 2", polls)
	}
}

func TestSubmitSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-rapidapi-key"); got != "secret-key" {
			t.Errorf("x-rapidapi-key = %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(submissionToken{Token: "tok-2"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	token, err := client.Submit(context.Background(), "code", LangC, "in", "out")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if token != "tok-2" {
		t.Errorf("token = %q, want tok-2", token)
	}
}

func TestSubmitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if _, err := client.Submit(context.Background(), "code", LangJava, "", ""); err == nil {
		t.Error("expected error on 500 response")
	}
}
