package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agent-hub/agent-hub/internal/domain/upload"
)

// UploadRepository implements upload.Repository.
type UploadRepository struct {
	pool *pgxpool.Pool
}

func NewUploadRepository(pool *pgxpool.Pool) *UploadRepository {
	return &UploadRepository{pool: pool}
}

func (r *UploadRepository) Create(ctx context.Context, u *upload.Upload) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO uploads (upload_id, user_id, file_name, mime_type, file_size, file_path, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, u.UploadID, u.UserID, u.FileName, u.MimeType, u.FileSize, u.FilePath, u.CreatedAt).Scan(&u.ID)
}

func (r *UploadRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*upload.Upload, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, upload_id, user_id, file_name, mime_type, file_size, file_path, created_at
		FROM uploads WHERE user_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*upload.Upload
	for rows.Next() {
		var u upload.Upload
		if err := rows.Scan(&u.ID, &u.UploadID, &u.UserID, &u.FileName, &u.MimeType, &u.FileSize, &u.FilePath, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (r *UploadRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM uploads`).Scan(&n)
	return n, err
}
