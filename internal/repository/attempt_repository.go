package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigil-backend/internal/model"
)

// AttemptRepository handles attempt state and bookmark data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Get retrieves the attempt for a test-student pair.
func (r *AttemptRepository) Get(ctx context.Context, testID string, studentID int) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT test_id, student_id, status, start_time, end_time
		 FROM attempts
		 WHERE test_id = $1 AND student_id = $2`, testID, studentID,
	).Scan(&a.TestID, &a.StudentID, &a.Status, &a.StartTime, &a.EndTime)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Begin inserts a started attempt for the pair. The conditional insert
// makes re-entry idempotent: when a row already exists nothing is
// written and pgx.ErrNoRows is returned, so the caller falls back to
// Get.
func (r *AttemptRepository) Begin(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (test_id, student_id, status, start_time)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (test_id, student_id) DO NOTHING
		 RETURNING status, start_time`,
		a.TestID, a.StudentID, model.AttemptStatusStarted,
	).Scan(&a.Status, &a.StartTime)
}

// Submit marks a started attempt as submitted. The status guard makes
// repeated submits no-ops: the first call transitions and reports true,
// later calls report false with no write.
func (r *AttemptRepository) Submit(ctx context.Context, testID string, studentID int, endTime time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $1, end_time = $2
		 WHERE test_id = $3 AND student_id = $4 AND status = $5`,
		model.AttemptStatusSubmitted, endTime, testID, studentID, model.AttemptStatusStarted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AddBookmark records a bookmarked question. Duplicate adds are no-ops.
func (r *AttemptRepository) AddBookmark(ctx context.Context, testID string, studentID, qid int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempt_bookmarks (test_id, student_id, qid)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (test_id, student_id, qid) DO NOTHING`,
		testID, studentID, qid)
	return err
}

// RemoveBookmark deletes a bookmark. Removing a missing bookmark is a
// no-op.
func (r *AttemptRepository) RemoveBookmark(ctx context.Context, testID string, studentID, qid int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM attempt_bookmarks
		 WHERE test_id = $1 AND student_id = $2 AND qid = $3`,
		testID, studentID, qid)
	return err
}

// ListBookmarks retrieves the bookmarked question positions for an
// attempt in order.
func (r *AttemptRepository) ListBookmarks(ctx context.Context, testID string, studentID int) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT qid FROM attempt_bookmarks
		 WHERE test_id = $1 AND student_id = $2
		 ORDER BY qid ASC`, testID, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qids []int
	for rows.Next() {
		var qid int
		if err := rows.Scan(&qid); err != nil {
			return nil, err
		}
		qids = append(qids, qid)
	}
	return qids, rows.Err()
}

// StudentAttempt is an attempt row joined with the student's account,
// as shown in the professor's roster view.
type StudentAttempt struct {
	StudentID int                 `json:"student_id"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Status    model.AttemptStatus `json:"status"`
	StartTime *time.Time          `json:"start_time,omitempty"`
	EndTime   *time.Time          `json:"end_time,omitempty"`
}

// ListByTest retrieves every attempt on a test joined with the student
// accounts, earliest start first.
func (r *AttemptRepository) ListByTest(ctx context.Context, testID string) ([]StudentAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.student_id, u.name, u.email, a.status, a.start_time, a.end_time
		 FROM attempts a
		 JOIN users u ON u.id = a.student_id
		 WHERE a.test_id = $1
		 ORDER BY a.start_time ASC NULLS LAST`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []StudentAttempt
	for rows.Next() {
		var a StudentAttempt
		if err := rows.Scan(&a.StudentID, &a.Name, &a.Email, &a.Status, &a.StartTime, &a.EndTime); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// AttemptHistory is an attempt row joined with its test metadata, as
// shown in the student's history view.
type AttemptHistory struct {
	TestID           string              `json:"test_id"`
	Subject          string              `json:"subject"`
	Topic            string              `json:"topic"`
	Kind             model.TestKind      `json:"kind"`
	Status           model.AttemptStatus `json:"status"`
	StartTime        *time.Time          `json:"start_time,omitempty"`
	EndTime          *time.Time          `json:"end_time,omitempty"`
	TotalMarks       *float64            `json:"total_marks,omitempty"`
	ResultsPublished bool                `json:"results_published"`
}

// ListHistoryByStudent retrieves a student's attempts joined with test
// metadata and any published result, newest first. Totals of
// unpublished tests are withheld.
func (r *AttemptRepository) ListHistoryByStudent(ctx context.Context, studentID int) ([]AttemptHistory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.test_id, t.subject, t.topic, t.kind, a.status, a.start_time, a.end_time,
		        CASE WHEN t.results_published THEN res.total_marks ELSE NULL END,
		        t.results_published
		 FROM attempts a
		 JOIN tests t ON a.test_id = t.test_id
		 LEFT JOIN results res ON res.test_id = a.test_id AND res.student_id = a.student_id
		 WHERE a.student_id = $1
		 ORDER BY a.start_time DESC NULLS LAST`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []AttemptHistory
	for rows.Next() {
		var h AttemptHistory
		if err := rows.Scan(&h.TestID, &h.Subject, &h.Topic, &h.Kind, &h.Status,
			&h.StartTime, &h.EndTime, &h.TotalMarks, &h.ResultsPublished); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
