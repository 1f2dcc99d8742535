package repository

import (
	"context"

	"github.com/itskys/jszs/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MonitorRepository handles live-attempt presence rows.
type MonitorRepository struct {
	pool *pgxpool.Pool
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool) *MonitorRepository {
	return &MonitorRepository{pool: pool}
}

// Upsert records a heartbeat keyed by session_id. A repeat heartbeat
// updates last_heartbeat and progress only, preserving the original
// start_time.
func (r *MonitorRepository) Upsert(ctx context.Context, row *model.MonitorRow) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO monitor
		   (session_id, student_name, student_id, exam_version,
		    start_time, last_heartbeat, progress)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (session_id) DO UPDATE SET
		   last_heartbeat = EXCLUDED.last_heartbeat,
		   progress = EXCLUDED.progress`,
		row.SessionID, row.StudentName, row.StudentID, row.ExamVersion,
		row.StartTime, row.LastHeartbeat, row.Progress,
	)
	return err
}

// PurgeStale deletes rows whose last heartbeat is older than the cutoff
// (unix ms). Returns the number of rows purged.
func (r *MonitorRepository) PurgeStale(ctx context.Context, cutoff int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM monitor WHERE last_heartbeat < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// List returns all presence rows ordered by most recent heartbeat first.
func (r *MonitorRepository) List(ctx context.Context) ([]model.MonitorRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, student_name, student_id, exam_version,
		        start_time, last_heartbeat, progress
		 FROM monitor
		 ORDER BY last_heartbeat DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.MonitorRow
	for rows.Next() {
		var row model.MonitorRow
		if err := rows.Scan(
			&row.SessionID, &row.StudentName, &row.StudentID,
			&row.ExamVersion, &row.StartTime, &row.LastHeartbeat, &row.Progress,
		); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
