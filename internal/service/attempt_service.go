package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigil-backend/internal/facematch"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/repository"
)

// Attempt flow errors.
var (
	ErrTestNotFound         = errors.New("test not found")
	ErrInvalidTestPassword  = errors.New("incorrect test password")
	ErrWindowClosed         = errors.New("test window is closed")
	ErrLivenessFailed       = errors.New("face verification failed")
	ErrAlreadySubmitted     = errors.New("attempt already submitted")
	ErrAttemptNotActive     = errors.New("no active attempt")
	ErrFaceCheckUnavailable = errors.New("face verification service unavailable")
)

// WithinWindow reports whether now falls inside the half-open exam
// window [start, end). A student may begin exactly at start but not at
// or after end.
func WithinWindow(now, start, end time.Time) bool {
	return !now.Before(start) && now.Before(end)
}

// RemainingSeconds returns how much of the attempt duration is left,
// floored at zero.
func RemainingSeconds(startTime time.Time, durationSeconds int, now time.Time) int {
	remaining := durationSeconds - int(now.Sub(startTime).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TotalMarks sums the ledger for one attempt.
func TotalMarks(answers []model.Answer) float64 {
	var total float64
	for _, a := range answers {
		total += a.Marks
	}
	return total
}

// AnswerView is an answer as shown back to the student mid-exam, with
// marks withheld.
type AnswerView struct {
	QID    int    `json:"qid"`
	Answer string `json:"answer"`
}

// TestEntry is the full exam-taking payload returned on entry and on
// re-entry after a disconnect.
type TestEntry struct {
	Test             *model.Test                `json:"test"`
	Attempt          *model.Attempt             `json:"attempt"`
	RemainingSeconds int                        `json:"remaining_seconds"`
	Bookmarks        []int                      `json:"bookmarks"`
	Answers          []AnswerView               `json:"answers"`
	Objective        []model.ObjectiveQuestion  `json:"objective_questions,omitempty"`
	Subjective       []model.SubjectiveQuestion `json:"subjective_questions,omitempty"`
	Practical        []model.PracticalQuestion  `json:"practical_questions,omitempty"`
}

// AttemptService drives the attempt state machine: the identity gate
// on entry, in-exam state reads, bookmarks and final submission.
type AttemptService struct {
	tests     *repository.TestRepository
	questions *repository.QuestionRepository
	attempts  *repository.AttemptRepository
	answers   *repository.AnswerRepository
	results   *repository.ResultRepository
	users     *repository.UserRepository
	faces     *facematch.Client
	log       zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	tests *repository.TestRepository,
	questions *repository.QuestionRepository,
	attempts *repository.AttemptRepository,
	answers *repository.AnswerRepository,
	results *repository.ResultRepository,
	users *repository.UserRepository,
	faces *facematch.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		tests:     tests,
		questions: questions,
		attempts:  attempts,
		answers:   answers,
		results:   results,
		users:     users,
		faces:     faces,
		log:       log.With().Str("component", "attempt_service").Logger(),
	}
}

// GiveTest runs the entry gate and starts (or resumes) an attempt.
// The checks run in a fixed order: test lookup, password, window,
// identity, then state. Re-entry after a disconnect lands on the same
// attempt with the original start time, so the remaining duration
// keeps counting down from the first entry.
func (s *AttemptService) GiveTest(ctx context.Context, studentID int, req *model.GiveTestRequest) (*TestEntry, error) {
	test, err := s.tests.GetByID(ctx, req.TestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test: %w", err)
	}

	if test.Password != req.Password {
		return nil, ErrInvalidTestPassword
	}

	if !WithinWindow(time.Now(), test.StartAt, test.EndAt) {
		return nil, ErrWindowClosed
	}

	if err := s.verifyIdentity(ctx, studentID, req.Image); err != nil {
		return nil, err
	}

	attempt := &model.Attempt{TestID: test.TestID, StudentID: studentID}
	err = s.attempts.Begin(ctx, attempt)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("begin attempt: %w", err)
		}
		// Row already existed: this is a re-entry.
		attempt, err = s.attempts.Get(ctx, test.TestID, studentID)
		if err != nil {
			return nil, fmt.Errorf("load attempt: %w", err)
		}
		if attempt.Status == model.AttemptStatusSubmitted {
			return nil, ErrAlreadySubmitted
		}
	}

	return s.buildEntry(ctx, test, attempt)
}

// GetState returns the current attempt payload for an active attempt.
func (s *AttemptService) GetState(ctx context.Context, studentID int, testID string) (*TestEntry, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test: %w", err)
	}

	attempt, err := s.attempts.Get(ctx, testID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotActive
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	if attempt.Status != model.AttemptStatusStarted {
		return nil, ErrAttemptNotActive
	}

	return s.buildEntry(ctx, test, attempt)
}

// Submit finalizes an attempt. The first call freezes the ledger into
// a result; repeated calls are accepted no-ops so a flaky client can
// retry safely.
func (s *AttemptService) Submit(ctx context.Context, studentID int, testID string) (*model.Result, error) {
	if _, err := s.attempts.Get(ctx, testID, studentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotActive
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	now := time.Now()
	transitioned, err := s.attempts.Submit(ctx, testID, studentID, now)
	if err != nil {
		return nil, fmt.Errorf("submit attempt: %w", err)
	}

	if !transitioned {
		// Already submitted: return the frozen result.
		res, err := s.results.Get(ctx, testID, studentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &model.Result{TestID: testID, StudentID: studentID}, nil
			}
			return nil, fmt.Errorf("load result: %w", err)
		}
		return res, nil
	}

	answers, err := s.answers.ListByAttempt(ctx, testID, studentID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}

	result := &model.Result{
		TestID:      testID,
		StudentID:   studentID,
		TotalMarks:  TotalMarks(answers),
		SubmittedAt: now,
	}
	if err := s.results.Upsert(ctx, result); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	s.log.Info().Str("test_id", testID).Int("student_id", studentID).
		Float64("total", result.TotalMarks).Msg("Attempt submitted")
	return result, nil
}

// Bookmark toggles a question bookmark on an active attempt.
func (s *AttemptService) Bookmark(ctx context.Context, studentID int, testID string, qid int, add bool) error {
	attempt, err := s.attempts.Get(ctx, testID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAttemptNotActive
		}
		return fmt.Errorf("load attempt: %w", err)
	}
	if attempt.Status != model.AttemptStatusStarted {
		return ErrAttemptNotActive
	}

	if add {
		return s.attempts.AddBookmark(ctx, testID, studentID, qid)
	}
	return s.attempts.RemoveBookmark(ctx, testID, studentID, qid)
}

// ListHistory returns the student's attempts with published totals.
func (s *AttemptService) ListHistory(ctx context.Context, studentID int) ([]repository.AttemptHistory, error) {
	return s.attempts.ListHistoryByStudent(ctx, studentID)
}

// verifyIdentity matches a live capture against the stored reference
// face. Students without a reference image pass through; this keeps
// accounts registered before the identity gate usable.
func (s *AttemptService) verifyIdentity(ctx context.Context, studentID int, capture string) error {
	user, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if user.FaceImage == "" {
		return nil
	}
	if capture == "" {
		return ErrLivenessFailed
	}

	match, err := s.faces.Verify(ctx, user.FaceImage, capture)
	if err != nil {
		s.log.Error().Err(err).Int("student_id", studentID).Msg("Face verification call failed")
		return ErrFaceCheckUnavailable
	}
	if !match {
		return ErrLivenessFailed
	}
	return nil
}

func (s *AttemptService) buildEntry(ctx context.Context, test *model.Test, attempt *model.Attempt) (*TestEntry, error) {
	entry := &TestEntry{Test: test, Attempt: attempt}

	if attempt.StartTime != nil {
		entry.RemainingSeconds = RemainingSeconds(*attempt.StartTime, test.DurationSeconds, time.Now())
	}

	bookmarks, err := s.attempts.ListBookmarks(ctx, test.TestID, attempt.StudentID)
	if err != nil {
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}
	entry.Bookmarks = bookmarks

	answers, err := s.answers.ListByAttempt(ctx, test.TestID, attempt.StudentID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	for _, a := range answers {
		entry.Answers = append(entry.Answers, AnswerView{QID: a.QID, Answer: a.Answer})
	}

	switch test.Kind {
	case model.TestKindObjective:
		entry.Objective, err = s.questions.ListObjective(ctx, test.TestID)
	case model.TestKindSubjective:
		entry.Subjective, err = s.questions.ListSubjective(ctx, test.TestID)
	case model.TestKindPractical:
		entry.Practical, err = s.questions.ListPractical(ctx, test.TestID)
	}
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	return entry, nil
}
