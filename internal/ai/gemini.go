package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"google.golang.org/api/option"
)

// Service wraps the Gemini API for question drafting and proctoring
// report summaries.
type Service struct {
	model *genai.GenerativeModel
	log   zerolog.Logger
}

// NewService initializes the Gemini client. When no API key is set the
// service is created non-functional and every call returns an error,
// so the rest of the platform keeps working.
func NewService(ctx context.Context, apiKey string, log zerolog.Logger) (*Service, error) {
	svc := &Service{log: log.With().Str("component", "ai").Logger()}
	if apiKey == "" {
		svc.log.Warn().Msg("GEMINI_API_KEY is not set. AI features will be unavailable.")
		return svc, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	svc.model = client.GenerativeModel("gemini-1.5-flash")
	return svc, nil
}

// GenerateQuestions drafts multiple choice questions for a topic. The
// output is parsed into question inputs the professor can review and
// edit before scheduling a test.
func (s *Service) GenerateQuestions(ctx context.Context, subject, topic string, count int) ([]model.ObjectiveQuestionInput, error) {
	if s.model == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	prompt := fmt.Sprintf(`You are an exam author. Write %d multiple choice questions for the subject %q on the topic %q.
Respond with ONLY a JSON array, no prose and no markdown fences. Each element must have exactly these keys:
"prompt", "option_a", "option_b", "option_c", "option_d", "answer".
The "answer" value must be the full text of the correct option.`, count, subject, topic)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	text := collectText(resp)
	if text == "" {
		return nil, fmt.Errorf("gemini returned no text content")
	}

	var questions []model.ObjectiveQuestionInput
	if err := json.Unmarshal([]byte(stripFences(text)), &questions); err != nil {
		s.log.Warn().Err(err).Str("raw", text).Msg("Failed to parse generated questions")
		return nil, fmt.Errorf("could not parse generated questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("gemini returned an empty question list")
	}
	return questions, nil
}

// GenerateReport summarizes a test's proctoring log into a short
// integrity report.
func (s *Service) GenerateReport(ctx context.Context, subject, topic string, entries []model.MonitorEntry) (string, error) {
	if s.model == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	var b strings.Builder
	b.WriteString("You are an exam integrity analyst. Below is the proctoring event log of the test ")
	fmt.Fprintf(&b, "%q (%s). ", subject, topic)
	b.WriteString("Summarize it into a short report for the professor: flag students with repeated violations, ")
	b.WriteString("note the dominant violation types, and state whether the session looked clean overall. ")
	b.WriteString("Respond in plain text.\n\nEvents:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s | %s | %s\n", e.RecordedAt.Format("15:04:05"), e.Email, e.Display)
	}
	if len(entries) == 0 {
		b.WriteString("(no events recorded)\n")
	}

	resp, err := s.model.GenerateContent(ctx, genai.Text(b.String()))
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}

	text := collectText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return strings.TrimSpace(text), nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out.WriteString(string(txt))
		}
	}
	return out.String()
}

// stripFences removes a markdown code fence if the model wrapped its
// JSON in one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
