package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigil-backend/internal/judge0"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/repository"
)

// Answer flow errors.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrGradingFailed    = errors.New("code grading service failed")
)

const negativeMarkPenalty = -0.25

// ScoreObjective grades one multiple choice answer. A case-insensitive
// match earns one mark; a wrong answer costs a quarter mark when
// negative marking is on and nothing otherwise.
func ScoreObjective(raw, correct string, negativeMarking bool) float64 {
	if strings.EqualFold(strings.TrimSpace(raw), strings.TrimSpace(correct)) {
		return 1
	}
	if negativeMarking {
		return negativeMarkPenalty
	}
	return 0
}

// AnswerService writes graded answer rows. Each write is a single
// atomic upsert, so a re-answer can never leave stale marks behind.
type AnswerService struct {
	tests     *repository.TestRepository
	questions *repository.QuestionRepository
	attempts  *repository.AttemptRepository
	answers   *repository.AnswerRepository
	judge     *judge0.Client
	log       zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(
	tests *repository.TestRepository,
	questions *repository.QuestionRepository,
	attempts *repository.AttemptRepository,
	answers *repository.AnswerRepository,
	judge *judge0.Client,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		tests:     tests,
		questions: questions,
		attempts:  attempts,
		answers:   answers,
		judge:     judge,
		log:       log.With().Str("component", "answer_service").Logger(),
	}
}

// Record grades and stores one answer for an active attempt. Marks are
// assigned per the test kind: objective answers are matched against
// the key, subjective answers wait for manual grading, practical
// answers run against the question's hidden test cases.
func (s *AnswerService) Record(ctx context.Context, studentID int, testID string, qid int, answerText string) (*model.Answer, error) {
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

	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("load test: %w", err)
	}

	marks, err := s.grade(ctx, test, qid, answerText)
	if err != nil {
		return nil, err
	}

	answer := &model.Answer{
		TestID:    testID,
		StudentID: studentID,
		QID:       qid,
		Answer:    answerText,
		Marks:     marks,
	}
	if err := s.answers.Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("store answer: %w", err)
	}
	return answer, nil
}

func (s *AnswerService) grade(ctx context.Context, test *model.Test, qid int, answerText string) (float64, error) {
	switch test.Kind {
	case model.TestKindObjective:
		q, err := s.questions.GetObjective(ctx, test.TestID, qid)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, ErrQuestionNotFound
			}
			return 0, fmt.Errorf("load question: %w", err)
		}
		return ScoreObjective(answerText, q.Answer, test.NegativeMarking), nil

	case model.TestKindSubjective:
		if _, err := s.questions.GetSubjective(ctx, test.TestID, qid); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, ErrQuestionNotFound
			}
			return 0, fmt.Errorf("load question: %w", err)
		}
		// Graded manually by the professor after submission.
		return 0, nil

	case model.TestKindPractical:
		q, err := s.questions.GetPractical(ctx, test.TestID, qid)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, ErrQuestionNotFound
			}
			return 0, fmt.Errorf("load question: %w", err)
		}
		return s.gradePractical(ctx, q, answerText)

	default:
		return 0, fmt.Errorf("unknown test kind %q", test.Kind)
	}
}

// gradePractical runs the submission against every hidden test case
// and awards a proportional share of the question's marks.
func (s *AnswerService) gradePractical(ctx context.Context, q *model.PracticalQuestion, source string) (float64, error) {
	var cases []model.TestCase
	if err := json.Unmarshal(q.TestCases, &cases); err != nil {
		return 0, fmt.Errorf("parse test cases: %w", err)
	}
	if len(cases) == 0 {
		return 0, nil
	}

	languageID := judge0.LanguageID(q.Compiler)
	passed := 0
	for _, tc := range cases {
		res, err := s.judge.Judge(ctx, source, languageID, tc.Input, tc.ExpectedOutput)
		if err != nil {
			s.log.Error().Err(err).Str("test_id", q.TestID).Int("qid", q.QID).Msg("Judge0 call failed")
			return 0, ErrGradingFailed
		}
		if res.Accepted() {
			passed++
		}
	}

	return q.MaxMarks * float64(passed) / float64(len(cases)), nil
}
