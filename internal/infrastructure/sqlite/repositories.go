package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/search"
	"github.com/agent-hub/agent-hub/internal/domain/task"
	"github.com/agent-hub/agent-hub/internal/domain/upload"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

type ExecutorRepository struct {
	db *sql.DB
}

func (r *ExecutorRepository) Upsert(ctx context.Context, rec *executor.Record) error {
	tags, err := json.Marshal(rec.Capabilities)
	if err != nil {
		return fmt.Errorf("encode capabilities: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO executors (executor_id, executor_type, display_name, capability_tags, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (executor_id) DO UPDATE SET
			executor_type=excluded.executor_type,
			display_name=excluded.display_name,
			capability_tags=excluded.capability_tags,
			status=excluded.status,
			updated_at=excluded.updated_at
	`, rec.ExecutorID, string(rec.ExecutorType), rec.DisplayName, string(tags), string(rec.Status), rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (r *ExecutorRepository) GetByID(ctx context.Context, executorID string) (*executor.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT executor_id, executor_type, display_name, capability_tags, status, created_at, updated_at
		FROM executors WHERE executor_id = ?
	`, executorID)
	rec, err := scanExecutor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *ExecutorRepository) List(ctx context.Context, limit, offset int) ([]*executor.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT executor_id, executor_type, display_name, capability_tags, status, created_at, updated_at
		FROM executors ORDER BY executor_id LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query executors: %w", err)
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
	_, err := r.db.ExecContext(ctx, `
		UPDATE executors SET status = ?, updated_at = ? WHERE executor_id = ?
	`, string(status), time.Now().UTC(), executorID)
	return err
}

func scanExecutor(row scanner) (*executor.Record, error) {
	var rec executor.Record
	var typ, status, tags string
	if err := row.Scan(&rec.ExecutorID, &typ, &rec.DisplayName, &tags, &status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.ExecutorType = executor.Type(typ)
	rec.Status = executor.Status(status)
	if err := json.Unmarshal([]byte(tags), &rec.Capabilities); err != nil {
		return nil, fmt.Errorf("decode capabilities of %s: %w", rec.ExecutorID, err)
	}
	return &rec, nil
}

type TaskRepository struct {
	db *sql.DB
}

const taskColumns = `id, task_id, user_id, executor_id, executor_type, task_type, payload, status, result, created_at, completed_at`

func (r *TaskRepository) Create(ctx context.Context, rec *task.Record) error {
	var result any
	if len(rec.Result) > 0 {
		result = string(rec.Result)
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (task_id, user_id, executor_id, executor_type, task_type, payload, status, result, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.TaskID.String(), rec.UserID, rec.ExecutorID, string(rec.ExecutorType), rec.TaskType,
		string(rec.Payload), string(rec.Status), result, rec.CreatedAt, rec.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	return err
}

func (r *TaskRepository) GetByID(ctx context.Context, taskID uuid.UUID) (*task.Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE task_id = ?`, taskID.String())
	rec, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*task.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
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
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM tasks
	`, string(task.StatusCompleted), string(task.StatusFailed)).Scan(&s.Total, &s.Completed, &s.Failed)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanTask(row scanner) (*task.Record, error) {
	var rec task.Record
	var taskID, typ, payload, status string
	var result sql.NullString
	var completedAt sql.NullTime
	if err := row.Scan(&rec.ID, &taskID, &rec.UserID, &rec.ExecutorID, &typ, &rec.TaskType, &payload, &status, &result, &rec.CreatedAt, &completedAt); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(taskID)
	if err != nil {
		return nil, fmt.Errorf("parse task id: %w", err)
	}
	rec.TaskID = id
	rec.ExecutorType = executor.Type(typ)
	rec.Status = task.Status(status)
	rec.Payload = json.RawMessage(payload)
	if result.Valid {
		rec.Result = json.RawMessage(result.String)
	}
	if completedAt.Valid {
		rec.CompletedAt = &completedAt.Time
	}
	return &rec, nil
}

type SearchRepository struct {
	db *sql.DB
}

func (r *SearchRepository) Create(ctx context.Context, rec *search.Record) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO search_history (user_id, query, search_type, results_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.UserID, rec.Query, string(rec.SearchType), rec.ResultsCount, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	return err
}

func (r *SearchRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*search.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, query, search_type, results_count, created_at
		FROM search_history WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query searches: %w", err)
	}
	defer rows.Close()
	var out []*search.Record
	for rows.Next() {
		var rec search.Record
		var mode string
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Query, &mode, &rec.ResultsCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		rec.SearchType = search.Mode(mode)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *SearchRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM search_history`).Scan(&n)
	return n, err
}

type UploadRepository struct {
	db *sql.DB
}

func (r *UploadRepository) Create(ctx context.Context, u *upload.Upload) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO uploads (upload_id, user_id, file_name, mime_type, file_size, file_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.UploadID.String(), u.UserID, u.FileName, u.MimeType, u.FileSize, u.FilePath, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *UploadRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*upload.Upload, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, upload_id, user_id, file_name, mime_type, file_size, file_path, created_at
		FROM uploads WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()
	var out []*upload.Upload
	for rows.Next() {
		var u upload.Upload
		var id string
		if err := rows.Scan(&u.ID, &id, &u.UserID, &u.FileName, &u.MimeType, &u.FileSize, &u.FilePath, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		if u.UploadID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse upload id: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (r *UploadRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM uploads`).Scan(&n)
	return n, err
}
