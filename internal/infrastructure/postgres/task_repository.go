package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agent-hub/agent-hub/internal/domain/task"
)

const taskColumns = `id, task_id, user_id, executor_id, executor_type, task_type, payload, status, result, created_at, completed_at`

// TaskRepository implements task.Repository.
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, rec *task.Record) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO tasks (task_id, user_id, executor_id, executor_type, task_type, payload, status, result, created_at, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`, rec.TaskID, rec.UserID, rec.ExecutorID, rec.ExecutorType, rec.TaskType, rec.Payload, rec.Status, nullJSON(rec.Result), rec.CreatedAt, rec.CompletedAt).Scan(&rec.ID)
}

func (r *TaskRepository) GetByID(ctx context.Context, taskID uuid.UUID) (*task.Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE task_id=$1`, taskID)
	return scanTask(row)
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*task.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE user_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*task.Record
	for rows.Next() {
		rec, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *TaskRepository) Stats(ctx context.Context) (*task.Stats, error) {
	var s task.Stats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status=$1),
			COUNT(*) FILTER (WHERE status=$2)
		FROM tasks
	`, task.StatusCompleted, task.StatusFailed).Scan(&s.Total, &s.Completed, &s.Failed)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanTask(row pgx.Row) (*task.Record, error) {
	var rec task.Record
	var payload, result []byte
	if err := row.Scan(&rec.ID, &rec.TaskID, &rec.UserID, &rec.ExecutorID, &rec.ExecutorType, &rec.TaskType, &payload, &rec.Status, &result, &rec.CreatedAt, &rec.CompletedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rec.Payload = payload
	if len(result) > 0 {
		rec.Result = result
	}
	return &rec, nil
}

// nullJSON maps an empty document to SQL NULL.
func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
