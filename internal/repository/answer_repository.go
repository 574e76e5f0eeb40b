package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigil-backend/internal/model"
)

// AnswerRepository handles the answer ledger.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Upsert writes one answer row. A re-answer for the same question
// replaces the previous text and marks atomically.
func (r *AnswerRepository) Upsert(ctx context.Context, a *model.Answer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO answers (test_id, student_id, qid, answer, marks)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (test_id, student_id, qid)
		 DO UPDATE SET answer = EXCLUDED.answer, marks = EXCLUDED.marks`,
		a.TestID, a.StudentID, a.QID, a.Answer, a.Marks)
	return err
}

// ListByAttempt retrieves every answer of one attempt in question order.
func (r *AnswerRepository) ListByAttempt(ctx context.Context, testID string, studentID int) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT test_id, student_id, qid, answer, marks
		 FROM answers
		 WHERE test_id = $1 AND student_id = $2
		 ORDER BY qid ASC`, testID, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.TestID, &a.StudentID, &a.QID, &a.Answer, &a.Marks); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// ListByTest retrieves every answer of a test grouped by student then
// question, for the professor's grading view.
func (r *AnswerRepository) ListByTest(ctx context.Context, testID string) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT test_id, student_id, qid, answer, marks
		 FROM answers
		 WHERE test_id = $1
		 ORDER BY student_id ASC, qid ASC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.TestID, &a.StudentID, &a.QID, &a.Answer, &a.Marks); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// SetMarks overrides the marks on one answer row, used when a
// professor grades subjective answers. Reports whether a row matched,
// so grading a question the student never answered is detectable.
func (r *AnswerRepository) SetMarks(ctx context.Context, testID string, studentID, qid int, marks float64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE answers SET marks = $1
		 WHERE test_id = $2 AND student_id = $3 AND qid = $4`,
		marks, testID, studentID, qid)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
