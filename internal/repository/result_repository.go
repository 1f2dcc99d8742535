package repository

import (
	"context"

	"github.com/itskys/jszs/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository handles result row data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert appends one result row and returns its id.
func (r *ResultRepository) Insert(ctx context.Context, data *model.ExamData, statsJSON []byte) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO results
		   (student_name, student_id, score, duration, correct_count,
		    submit_time, exam_version, switch_count, stats_json)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		data.StudentName, data.StudentID, data.Score, data.Duration,
		data.CorrectCount, data.SubmitTime, data.ExamVersion,
		data.SwitchCount, statsJSON,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// List returns all stored result rows, newest first by id.
func (r *ResultRepository) List(ctx context.Context) ([]model.ResultRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_name, student_id, score, duration, correct_count,
		        submit_time, exam_version, switch_count, stats_json, created_at
		 FROM results
		 ORDER BY id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ResultRow
	for rows.Next() {
		var row model.ResultRow
		if err := rows.Scan(
			&row.ID, &row.StudentName, &row.StudentID, &row.Score,
			&row.Duration, &row.CorrectCount, &row.SubmitTime,
			&row.ExamVersion, &row.SwitchCount, &row.Stats, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// Delete removes one result row by id. Returns the number of rows deleted;
// 0 for an absent id is a valid outcome, not an error.
func (r *ResultRepository) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM results WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
