package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigil-backend/internal/model"
)

// TestRepository handles test scheduling data access. Question rows are
// written in the same transaction as the test row so a half-created
// test is never visible.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// CreateObjective inserts an objective test and its questions.
func (r *TestRepository) CreateObjective(ctx context.Context, t *model.Test, questions []model.ObjectiveQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertTest(ctx, tx, t); err != nil {
		return err
	}
	for _, q := range questions {
		_, err := tx.Exec(ctx,
			`INSERT INTO objective_questions (test_id, qid, prompt, option_a, option_b, option_c, option_d, answer)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.TestID, q.QID, q.Prompt, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.Answer)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// CreateSubjective inserts a subjective test and its questions.
func (r *TestRepository) CreateSubjective(ctx context.Context, t *model.Test, questions []model.SubjectiveQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertTest(ctx, tx, t); err != nil {
		return err
	}
	for _, q := range questions {
		_, err := tx.Exec(ctx,
			`INSERT INTO subjective_questions (test_id, qid, prompt, max_marks)
			 VALUES ($1, $2, $3, $4)`,
			t.TestID, q.QID, q.Prompt, q.MaxMarks)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// CreatePractical inserts a practical test and its questions.
func (r *TestRepository) CreatePractical(ctx context.Context, t *model.Test, questions []model.PracticalQuestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertTest(ctx, tx, t); err != nil {
		return err
	}
	for _, q := range questions {
		_, err := tx.Exec(ctx,
			`INSERT INTO practical_questions (test_id, qid, prompt, compiler, test_cases, max_marks)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			t.TestID, q.QID, q.Prompt, q.Compiler, q.TestCases, q.MaxMarks)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func insertTest(ctx context.Context, tx pgx.Tx, t *model.Test) error {
	return tx.QueryRow(ctx,
		`INSERT INTO tests (test_id, professor_id, subject, topic, kind, start_at, end_at,
		                    duration_seconds, password, proctor_mode, negative_marking, compiler)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`,
		t.TestID, t.ProfessorID, t.Subject, t.Topic, t.Kind, t.StartAt, t.EndAt,
		t.DurationSeconds, t.Password, t.ProctorMode, t.NegativeMarking, t.Compiler,
	).Scan(&t.CreatedAt)
}

// GetByID retrieves a test by its public ID.
func (r *TestRepository) GetByID(ctx context.Context, testID string) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT test_id, professor_id, subject, topic, kind, start_at, end_at,
		        duration_seconds, password, proctor_mode, negative_marking,
		        COALESCE(compiler, ''), results_published, created_at
		 FROM tests
		 WHERE test_id = $1`, testID,
	).Scan(&t.TestID, &t.ProfessorID, &t.Subject, &t.Topic, &t.Kind, &t.StartAt,
		&t.EndAt, &t.DurationSeconds, &t.Password, &t.ProctorMode,
		&t.NegativeMarking, &t.Compiler, &t.ResultsPublished, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByProfessor retrieves every test a professor has scheduled,
// newest first.
func (r *TestRepository) ListByProfessor(ctx context.Context, professorID int) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT test_id, professor_id, subject, topic, kind, start_at, end_at,
		        duration_seconds, password, proctor_mode, negative_marking,
		        COALESCE(compiler, ''), results_published, created_at
		 FROM tests
		 WHERE professor_id = $1
		 ORDER BY created_at DESC`, professorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.TestID, &t.ProfessorID, &t.Subject, &t.Topic, &t.Kind,
			&t.StartAt, &t.EndAt, &t.DurationSeconds, &t.Password, &t.ProctorMode,
			&t.NegativeMarking, &t.Compiler, &t.ResultsPublished, &t.CreatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// PublishResults flips the results visibility flag for a test.
func (r *TestRepository) PublishResults(ctx context.Context, testID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tests SET results_published = TRUE WHERE test_id = $1`, testID)
	return err
}
