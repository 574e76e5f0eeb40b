package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigil-backend/internal/model"
)

// ResultRepository handles frozen attempt totals.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Upsert writes a result row. Manual mark uploads may overwrite an
// automatically computed total.
func (r *ResultRepository) Upsert(ctx context.Context, res *model.Result) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO results (test_id, student_id, total_marks, submitted_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (test_id, student_id)
		 DO UPDATE SET total_marks = EXCLUDED.total_marks, submitted_at = EXCLUDED.submitted_at`,
		res.TestID, res.StudentID, res.TotalMarks, res.SubmittedAt)
	return err
}

// Get retrieves the result for one test-student pair.
func (r *ResultRepository) Get(ctx context.Context, testID string, studentID int) (*model.Result, error) {
	res := &model.Result{}
	err := r.pool.QueryRow(ctx,
		`SELECT test_id, student_id, total_marks, submitted_at
		 FROM results
		 WHERE test_id = $1 AND student_id = $2`, testID, studentID,
	).Scan(&res.TestID, &res.StudentID, &res.TotalMarks, &res.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListByTest retrieves every result of a test joined with student
// identity, best score first.
func (r *ResultRepository) ListByTest(ctx context.Context, testID string) ([]model.StudentResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT res.student_id, u.name, u.email, res.total_marks, res.submitted_at
		 FROM results res
		 JOIN users u ON u.id = res.student_id
		 WHERE res.test_id = $1
		 ORDER BY res.total_marks DESC, u.name ASC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.StudentResult
	for rows.Next() {
		var sr model.StudentResult
		if err := rows.Scan(&sr.StudentID, &sr.Name, &sr.Email, &sr.TotalMarks, &sr.SubmittedAt); err != nil {
			return nil, err
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}
