package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
)

// ExecutorRepository implements executor.Repository.
type ExecutorRepository struct {
	pool *pgxpool.Pool
}

func NewExecutorRepository(pool *pgxpool.Pool) *ExecutorRepository {
	return &ExecutorRepository{pool: pool}
}

func (r *ExecutorRepository) Upsert(ctx context.Context, rec *executor.Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO executors (executor_id, executor_type, display_name, capability_tags, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (executor_id) DO UPDATE SET
			executor_type=EXCLUDED.executor_type,
			display_name=EXCLUDED.display_name,
			capability_tags=EXCLUDED.capability_tags,
			status=EXCLUDED.status,
			updated_at=EXCLUDED.updated_at
	`, rec.ExecutorID, rec.ExecutorType, rec.DisplayName, rec.Capabilities, rec.Status, rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (r *ExecutorRepository) GetByID(ctx context.Context, executorID string) (*executor.Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT executor_id, executor_type, display_name, capability_tags, status, created_at, updated_at
		FROM executors WHERE executor_id=$1
	`, executorID)
	return scanExecutor(row)
}

func (r *ExecutorRepository) List(ctx context.Context, limit, offset int) ([]*executor.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT executor_id, executor_type, display_name, capability_tags, status, created_at, updated_at
		FROM executors ORDER BY executor_id LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*executor.Record
	for rows.Next() {
		rec, err := scanExecutor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *ExecutorRepository) UpdateStatus(ctx context.Context, executorID string, status executor.Status) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE executors SET status=$1, updated_at=NOW() WHERE executor_id=$2
	`, status, executorID)
	return err
}

func scanExecutor(row pgx.Row) (*executor.Record, error) {
	var rec executor.Record
	if err := row.Scan(&rec.ExecutorID, &rec.ExecutorType, &rec.DisplayName, &rec.Capabilities, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
