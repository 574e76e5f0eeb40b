package facematch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verify" {
			t.Errorf("path = %q, want /verify", r.URL.Path)
		}
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(verifyResponse{Match: req.ImageA == req.ImageB})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	match, err := client.Verify(context.Background(), "same-face", "same-face")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !match {
		t.Error("expected match for identical images")
	}

	match, err = client.Verify(context.Background(), "face-a", "face-b")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if match {
		t.Error("expected no match for different images")
	}
}

func TestVerifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Verify(context.Background(), "a", "b"); err == nil {
		t.Error("expected error on non-200 response")
	}
}
