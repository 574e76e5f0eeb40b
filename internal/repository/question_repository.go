package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigil-backend/internal/model"
)

// QuestionRepository handles question data access across the three
// question tables.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// GetObjective retrieves one objective question by test and position.
func (r *QuestionRepository) GetObjective(ctx context.Context, testID string, qid int) (*model.ObjectiveQuestion, error) {
	q := &model.ObjectiveQuestion{}
	err := r.pool.QueryRow(ctx,
		`SELECT test_id, qid, prompt, option_a, option_b, option_c, option_d, answer
		 FROM objective_questions
		 WHERE test_id = $1 AND qid = $2`, testID, qid,
	).Scan(&q.TestID, &q.QID, &q.Prompt, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.Answer)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListObjective retrieves every objective question of a test in order.
func (r *QuestionRepository) ListObjective(ctx context.Context, testID string) ([]model.ObjectiveQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT test_id, qid, prompt, option_a, option_b, option_c, option_d, answer
		 FROM objective_questions
		 WHERE test_id = $1
		 ORDER BY qid ASC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.ObjectiveQuestion
	for rows.Next() {
		var q model.ObjectiveQuestion
		if err := rows.Scan(&q.TestID, &q.QID, &q.Prompt, &q.OptionA, &q.OptionB,
			&q.OptionC, &q.OptionD, &q.Answer); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetSubjective retrieves one subjective question.
func (r *QuestionRepository) GetSubjective(ctx context.Context, testID string, qid int) (*model.SubjectiveQuestion, error) {
	q := &model.SubjectiveQuestion{}
	err := r.pool.QueryRow(ctx,
		`SELECT test_id, qid, prompt, max_marks
		 FROM subjective_questions
		 WHERE test_id = $1 AND qid = $2`, testID, qid,
	).Scan(&q.TestID, &q.QID, &q.Prompt, &q.MaxMarks)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListSubjective retrieves every subjective question of a test in order.
func (r *QuestionRepository) ListSubjective(ctx context.Context, testID string) ([]model.SubjectiveQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT test_id, qid, prompt, max_marks
		 FROM subjective_questions
		 WHERE test_id = $1
		 ORDER BY qid ASC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.SubjectiveQuestion
	for rows.Next() {
		var q model.SubjectiveQuestion
		if err := rows.Scan(&q.TestID, &q.QID, &q.Prompt, &q.MaxMarks); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetPractical retrieves one practical question including its hidden
// test cases.
func (r *QuestionRepository) GetPractical(ctx context.Context, testID string, qid int) (*model.PracticalQuestion, error) {
	q := &model.PracticalQuestion{}
	err := r.pool.QueryRow(ctx,
		`SELECT test_id, qid, prompt, compiler, test_cases, max_marks
		 FROM practical_questions
		 WHERE test_id = $1 AND qid = $2`, testID, qid,
	).Scan(&q.TestID, &q.QID, &q.Prompt, &q.Compiler, &q.TestCases, &q.MaxMarks)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListPractical retrieves every practical question of a test in order.
func (r *QuestionRepository) ListPractical(ctx context.Context, testID string) ([]model.PracticalQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT test_id, qid, prompt, compiler, test_cases, max_marks
		 FROM practical_questions
		 WHERE test_id = $1
		 ORDER BY qid ASC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.PracticalQuestion
	for rows.Next() {
		var q model.PracticalQuestion
		if err := rows.Scan(&q.TestID, &q.QID, &q.Prompt, &q.Compiler, &q.TestCases, &q.MaxMarks); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// DeleteObjective removes one objective question. Reports whether a
// row was deleted.
func (r *QuestionRepository) DeleteObjective(ctx context.Context, testID string, qid int) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM objective_questions WHERE test_id = $1 AND qid = $2`,
		testID, qid)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReplaceObjective swaps the full question set of an objective test in
// one transaction. Used when editing before the exam window opens.
func (r *QuestionRepository) ReplaceObjective(ctx context.Context, testID string, questions []model.ObjectiveQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM objective_questions WHERE test_id = $1`, testID); err != nil {
		return err
	}
	for _, q := range questions {
		_, err := tx.Exec(ctx,
			`INSERT INTO objective_questions (test_id, qid, prompt, option_a, option_b, option_c, option_d, answer)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			testID, q.QID, q.Prompt, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.Answer)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
