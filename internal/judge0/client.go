package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Status IDs from the Judge0 API.
const (
	StatusAccepted   = 3
	statusInQueue    = 1
	statusProcessing = 2
)

// Language IDs from the Judge0 API.
const (
	LangPython3 = 71
	LangC       = 50
	LangCPP     = 54
	LangJava    = 62
)

// LanguageID maps a compiler name to a Judge0 language ID. Unknown
// compilers grade as Java, matching how tests were historically run.
func LanguageID(compiler string) int {
	switch compiler {
	case "python3", "python":
		return LangPython3
	case "c":
		return LangC
	case "cpp", "c++":
		return LangCPP
	default:
		return LangJava
	}
}

// Client submits code to a Judge0 instance and polls for the verdict.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Client. The API key is optional for self-hosted
// instances and required for the RapidAPI-hosted one.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type submissionRequest struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

type submissionToken struct {
	Token string `json:"token"`
}

// SubmissionResult is the polled verdict of one submission.
type SubmissionResult struct {
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// Accepted reports whether the submission passed its expected output.
func (r *SubmissionResult) Accepted() bool {
	return r.Status.ID == StatusAccepted
}

// Submit sends one source-plus-testcase submission and returns its
// polling token.
func (c *Client) Submit(ctx context.Context, source string, languageID int, stdin, expectedOutput string) (string, error) {
	body, err := json.Marshal(submissionRequest{
		SourceCode:     source,
		LanguageID:     languageID,
		Stdin:          stdin,
		ExpectedOutput: expectedOutput,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/submissions?base64_encoded=false", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("judge0 submission returned status %d", resp.StatusCode)
	}

	var tok submissionToken
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}
	return tok.Token, nil
}

// Result fetches the current verdict for a token.
func (c *Client) Result(ctx context.Context, token string) (*SubmissionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/submissions/"+token+"?base64_encoded=false", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("judge0 result returned status %d", resp.StatusCode)
	}

	var out SubmissionResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Judge submits and polls until the verdict is final or the context
// expires.
func (c *Client) Judge(ctx context.Context, source string, languageID int, stdin, expectedOutput string) (*SubmissionResult, error) {
	token, err := c.Submit(ctx, source, languageID, stdin, expectedOutput)
	if err != nil {
		return nil, err
	}

	for {
		res, err := c.Result(ctx, token)
		if err != nil {
			return nil, err
		}
		if res.Status.ID != statusInQueue && res.Status.ID != statusProcessing {
			return res, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-rapidapi-key", c.apiKey)
	}
}
