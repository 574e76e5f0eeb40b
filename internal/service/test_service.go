package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigil-backend/internal/mailer"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/repository"
)

// Test management errors.
var (
	ErrNotOwner            = errors.New("test belongs to another professor")
	ErrEditLocked          = errors.New("questions are locked while the window is open")
	ErrInsufficientCredits = errors.New("not enough exam credits")
	ErrInvalidMarks        = errors.New("marks value is not a number")
)

// TestService covers the professor surface: scheduling tests, editing
// questions before the window opens, sharing invites, grading and
// publishing results. Scheduling a test consumes one exam credit.
type TestService struct {
	tests     *repository.TestRepository
	questions *repository.QuestionRepository
	answers   *repository.AnswerRepository
	results   *repository.ResultRepository
	attempts  *repository.AttemptRepository
	users     *repository.UserRepository
	mail      *mailer.Mailer
	log       zerolog.Logger
}

// NewTestService creates a new TestService.
func NewTestService(
	tests *repository.TestRepository,
	questions *repository.QuestionRepository,
	answers *repository.AnswerRepository,
	results *repository.ResultRepository,
	attempts *repository.AttemptRepository,
	users *repository.UserRepository,
	mail *mailer.Mailer,
	log zerolog.Logger,
) *TestService {
	return &TestService{
		tests:     tests,
		questions: questions,
		answers:   answers,
		results:   results,
		attempts:  attempts,
		users:     users,
		mail:      mail,
		log:       log.With().Str("component", "test_service").Logger(),
	}
}

// CreateObjective schedules an objective test.
func (s *TestService) CreateObjective(ctx context.Context, professorID int, req *model.CreateObjectiveTestRequest) (*model.Test, error) {
	test := &model.Test{
		TestID:          uuid.New().String(),
		ProfessorID:     professorID,
		Subject:         req.Subject,
		Topic:           req.Topic,
		Kind:            model.TestKindObjective,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		DurationSeconds: req.DurationSeconds,
		Password:        req.Password,
		ProctorMode:     model.ProctorMode(req.ProctorMode),
		NegativeMarking: req.NegativeMarking,
	}

	questions := make([]model.ObjectiveQuestion, 0, len(req.Questions))
	for i, q := range req.Questions {
		questions = append(questions, model.ObjectiveQuestion{
			TestID:  test.TestID,
			QID:     i + 1,
			Prompt:  q.Prompt,
			OptionA: q.OptionA,
			OptionB: q.OptionB,
			OptionC: q.OptionC,
			OptionD: q.OptionD,
			Answer:  q.Answer,
		})
	}

	if err := s.createWithCredit(ctx, professorID, test, func() error {
		return s.tests.CreateObjective(ctx, test, questions)
	}); err != nil {
		return nil, err
	}
	return test, nil
}

// CreateSubjective schedules a subjective test.
func (s *TestService) CreateSubjective(ctx context.Context, professorID int, req *model.CreateSubjectiveTestRequest) (*model.Test, error) {
	test := &model.Test{
		TestID:          uuid.New().String(),
		ProfessorID:     professorID,
		Subject:         req.Subject,
		Topic:           req.Topic,
		Kind:            model.TestKindSubjective,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		DurationSeconds: req.DurationSeconds,
		Password:        req.Password,
		ProctorMode:     model.ProctorMode(req.ProctorMode),
	}

	questions := make([]model.SubjectiveQuestion, 0, len(req.Questions))
	for i, q := range req.Questions {
		questions = append(questions, model.SubjectiveQuestion{
			TestID:   test.TestID,
			QID:      i + 1,
			Prompt:   q.Prompt,
			MaxMarks: q.MaxMarks,
		})
	}

	if err := s.createWithCredit(ctx, professorID, test, func() error {
		return s.tests.CreateSubjective(ctx, test, questions)
	}); err != nil {
		return nil, err
	}
	return test, nil
}

// CreatePractical schedules a practical test.
func (s *TestService) CreatePractical(ctx context.Context, professorID int, req *model.CreatePracticalTestRequest) (*model.Test, error) {
	test := &model.Test{
		TestID:          uuid.New().String(),
		ProfessorID:     professorID,
		Subject:         req.Subject,
		Topic:           req.Topic,
		Kind:            model.TestKindPractical,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		DurationSeconds: req.DurationSeconds,
		Password:        req.Password,
		ProctorMode:     model.ProctorMode(req.ProctorMode),
		Compiler:        req.Compiler,
	}

	questions := make([]model.PracticalQuestion, 0, len(req.Questions))
	for i, q := range req.Questions {
		cases, err := marshalTestCases(q.TestCases)
		if err != nil {
			return nil, err
		}
		questions = append(questions, model.PracticalQuestion{
			TestID:    test.TestID,
			QID:       i + 1,
			Prompt:    q.Prompt,
			Compiler:  req.Compiler,
			TestCases: cases,
			MaxMarks:  q.MaxMarks,
		})
	}

	if err := s.createWithCredit(ctx, professorID, test, func() error {
		return s.tests.CreatePractical(ctx, test, questions)
	}); err != nil {
		return nil, err
	}
	return test, nil
}

func marshalTestCases(cases []model.TestCase) (json.RawMessage, error) {
	data, err := json.Marshal(cases)
	if err != nil {
		return nil, fmt.Errorf("encode test cases: %w", err)
	}
	return data, nil
}

// createWithCredit consumes one credit, runs the insert, and refunds
// the credit if the insert fails.
func (s *TestService) createWithCredit(ctx context.Context, professorID int, test *model.Test, insert func() error) error {
	ok, err := s.users.ConsumeCredit(ctx, professorID)
	if err != nil {
		return fmt.Errorf("consume credit: %w", err)
	}
	if !ok {
		return ErrInsufficientCredits
	}

	if err := insert(); err != nil {
		if refundErr := s.users.AddCredits(ctx, professorID, 1); refundErr != nil {
			s.log.Error().Err(refundErr).Int("professor_id", professorID).Msg("Failed to refund credit after insert failure")
		}
		return fmt.Errorf("create test: %w", err)
	}

	s.log.Info().Str("test_id", test.TestID).Str("kind", string(test.Kind)).
		Int("professor_id", professorID).Msg("Test scheduled")
	return nil
}

// GetOwned loads a test and verifies ownership.
func (s *TestService) GetOwned(ctx context.Context, professorID int, testID string) (*model.Test, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test: %w", err)
	}
	if test.ProfessorID != professorID {
		return nil, ErrNotOwner
	}
	return test, nil
}

// ListHistory returns every test the professor has scheduled.
func (s *TestService) ListHistory(ctx context.Context, professorID int) ([]model.Test, error) {
	return s.tests.ListByProfessor(ctx, professorID)
}

// ReplaceObjectiveQuestions swaps the question set of an owned
// objective test. Edits are rejected while the window is open so a
// test can never change under an active attempt.
func (s *TestService) ReplaceObjectiveQuestions(ctx context.Context, professorID int, testID string, inputs []model.ObjectiveQuestionInput) error {
	test, err := s.GetOwned(ctx, professorID, testID)
	if err != nil {
		return err
	}
	if WithinWindow(time.Now(), test.StartAt, test.EndAt) {
		return ErrEditLocked
	}

	questions := make([]model.ObjectiveQuestion, 0, len(inputs))
	for i, q := range inputs {
		questions = append(questions, model.ObjectiveQuestion{
			TestID:  testID,
			QID:     i + 1,
			Prompt:  q.Prompt,
			OptionA: q.OptionA,
			OptionB: q.OptionB,
			OptionC: q.OptionC,
			OptionD: q.OptionD,
			Answer:  q.Answer,
		})
	}
	return s.questions.ReplaceObjective(ctx, testID, questions)
}

// DeleteObjectiveQuestion removes one question from an owned objective
// test, under the same window lock as full edits.
func (s *TestService) DeleteObjectiveQuestion(ctx context.Context, professorID int, testID string, qid int) error {
	test, err := s.GetOwned(ctx, professorID, testID)
	if err != nil {
		return err
	}
	if WithinWindow(time.Now(), test.StartAt, test.EndAt) {
		return ErrEditLocked
	}

	deleted, err := s.questions.DeleteObjective(ctx, testID, qid)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if !deleted {
		return ErrQuestionNotFound
	}
	return nil
}

// ListStudents returns every attempt on an owned test joined with the
// student accounts.
func (s *TestService) ListStudents(ctx context.Context, professorID int, testID string) ([]repository.StudentAttempt, error) {
	if _, err := s.GetOwned(ctx, professorID, testID); err != nil {
		return nil, err
	}
	return s.attempts.ListByTest(ctx, testID)
}

// Share emails the test ID and password to a list of students.
func (s *TestService) Share(ctx context.Context, professorID int, req *model.ShareTestRequest) error {
	test, err := s.GetOwned(ctx, professorID, req.TestID)
	if err != nil {
		return err
	}

	var failed []string
	for _, email := range req.Emails {
		if err := s.mail.SendTestInvite(email, test.Subject, test.TestID, test.Password); err != nil {
			s.log.Error().Err(err).Str("email", email).Msg("Failed to send test invite")
			failed = append(failed, email)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to send invites to: %s", strings.Join(failed, ", "))
	}
	return nil
}

// UploadMarks records externally graded totals keyed by student email.
// Unknown emails are skipped and reported back.
func (s *TestService) UploadMarks(ctx context.Context, professorID int, req *model.UploadMarksRequest) ([]string, error) {
	if _, err := s.GetOwned(ctx, professorID, req.TestID); err != nil {
		return nil, err
	}

	var skipped []string
	now := time.Now()
	for _, row := range req.Rows {
		marks, err := strconv.ParseFloat(strings.TrimSpace(row.Marks), 64)
		if err != nil {
			return nil, ErrInvalidMarks
		}

		user, err := s.users.GetByEmail(ctx, row.Email)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				skipped = append(skipped, row.Email)
				continue
			}
			return nil, fmt.Errorf("load account: %w", err)
		}

		res := &model.Result{
			TestID:      req.TestID,
			StudentID:   user.ID,
			TotalMarks:  marks,
			SubmittedAt: now,
		}
		if err := s.results.Upsert(ctx, res); err != nil {
			return nil, fmt.Errorf("store result: %w", err)
		}
	}
	return skipped, nil
}

// GradeSubjective sets the marks on one subjective answer and
// recomputes the student's frozen total.
func (s *TestService) GradeSubjective(ctx context.Context, professorID int, testID string, studentID, qid int, marks float64) error {
	if _, err := s.GetOwned(ctx, professorID, testID); err != nil {
		return err
	}

	updated, err := s.answers.SetMarks(ctx, testID, studentID, qid, marks)
	if err != nil {
		return fmt.Errorf("set marks: %w", err)
	}
	if !updated {
		return ErrQuestionNotFound
	}

	answers, err := s.answers.ListByAttempt(ctx, testID, studentID)
	if err != nil {
		return fmt.Errorf("load answers: %w", err)
	}

	submittedAt := time.Now()
	if existing, err := s.results.Get(ctx, testID, studentID); err == nil {
		submittedAt = existing.SubmittedAt
	}

	return s.results.Upsert(ctx, &model.Result{
		TestID:      testID,
		StudentID:   studentID,
		TotalMarks:  TotalMarks(answers),
		SubmittedAt: submittedAt,
	})
}

// ListAnswers returns every answer of an owned test for grading.
func (s *TestService) ListAnswers(ctx context.Context, professorID int, testID string) ([]model.Answer, error) {
	if _, err := s.GetOwned(ctx, professorID, testID); err != nil {
		return nil, err
	}
	return s.answers.ListByTest(ctx, testID)
}

// ViewResults returns every result of an owned test.
func (s *TestService) ViewResults(ctx context.Context, professorID int, testID string) ([]model.StudentResult, error) {
	if _, err := s.GetOwned(ctx, professorID, testID); err != nil {
		return nil, err
	}
	return s.results.ListByTest(ctx, testID)
}

// PublishResults makes an owned test's totals visible to students.
func (s *TestService) PublishResults(ctx context.Context, professorID int, testID string) error {
	if _, err := s.GetOwned(ctx, professorID, testID); err != nil {
		return err
	}
	return s.tests.PublishResults(ctx, testID)
}

// ListQuestions returns the full question set of an owned test,
// including answer keys and hidden test cases.
func (s *TestService) ListQuestions(ctx context.Context, professorID int, testID string) (interface{}, error) {
	test, err := s.GetOwned(ctx, professorID, testID)
	if err != nil {
		return nil, err
	}

	switch test.Kind {
	case model.TestKindObjective:
		return s.questions.ListObjective(ctx, testID)
	case model.TestKindSubjective:
		return s.questions.ListSubjective(ctx, testID)
	default:
		return s.questions.ListPractical(ctx, testID)
	}
}
