package facematch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the face verification sidecar. The sidecar compares
// two base64 images and reports whether they show the same person.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given sidecar base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type verifyRequest struct {
	ImageA string `json:"image_a"`
	ImageB string `json:"image_b"`
}

type verifyResponse struct {
	Match bool `json:"match"`
}

// Verify compares a live capture against the stored reference image.
func (c *Client) Verify(ctx context.Context, reference, capture string) (bool, error) {
	body, err := json.Marshal(verifyRequest{ImageA: reference, ImageB: capture})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("face verification service returned status %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	return out.Match, nil
}
