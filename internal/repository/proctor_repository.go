package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigil-backend/internal/model"
)

// ProctorRepository provides read access to the persisted proctoring
// event tables. Writes go through the queue workers, not this type.
type ProctorRepository struct {
	pool *pgxpool.Pool
}

// NewProctorRepository creates a new ProctorRepository.
func NewProctorRepository(pool *pgxpool.Pool) *ProctorRepository {
	return &ProctorRepository{pool: pool}
}

// ListMonitorEntries retrieves every proctoring event of a test from
// both event tables, joined with student identity, newest first.
func (r *ProctorRepository) ListMonitorEntries(ctx context.Context, testID string) ([]model.MonitorEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.student_id, u.email, u.name, e.kind, e.recorded_at
		 FROM (
		     SELECT student_id, kind, recorded_at FROM proctor_events WHERE test_id = $1
		     UNION ALL
		     SELECT student_id, kind, recorded_at FROM window_events WHERE test_id = $1
		 ) e
		 JOIN users u ON u.id = e.student_id
		 ORDER BY e.recorded_at DESC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.MonitorEntry
	for rows.Next() {
		var e model.MonitorEntry
		if err := rows.Scan(&e.StudentID, &e.Email, &e.Name, &e.Kind, &e.RecordedAt); err != nil {
			return nil, err
		}
		e.Display = PrettyViolation(e.Kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ViolationCounts returns the number of recorded violations per
// student for a test. Clean liveness pings are excluded.
func (r *ProctorRepository) ViolationCounts(ctx context.Context, testID string) (map[int]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id, COUNT(*)
		 FROM (
		     SELECT student_id FROM proctor_events WHERE test_id = $1 AND kind <> 'video_feed'
		     UNION ALL
		     SELECT student_id FROM window_events WHERE test_id = $1
		 ) e
		 GROUP BY student_id`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var sid int
		var count int64
		if err := rows.Scan(&sid, &count); err != nil {
			return nil, err
		}
		counts[sid] = count
	}
	return counts, rows.Err()
}

// PrettyViolation renders an event kind into the display text used by
// the monitoring views.
func PrettyViolation(kind string) string {
	switch kind {
	case "video_feed":
		return "Active"
	case "tab_switch":
		return "Tab switch detected"
	default:
		return strings.ReplaceAll(kind, "_", " ")
	}
}
