package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agent-hub/agent-hub/internal/domain/search"
)

// SearchRepository implements search.Repository.
type SearchRepository struct {
	pool *pgxpool.Pool
}

func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{pool: pool}
}

func (r *SearchRepository) Create(ctx context.Context, rec *search.Record) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO search_history (user_id, query, search_type, results_count, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, rec.UserID, rec.Query, rec.SearchType, rec.ResultsCount, rec.CreatedAt).Scan(&rec.ID)
}

func (r *SearchRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*search.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, query, search_type, results_count, created_at
		FROM search_history WHERE user_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*search.Record
	for rows.Next() {
		var rec search.Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Query, &rec.SearchType, &rec.ResultsCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *SearchRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM search_history`).Scan(&n)
	return n, err
}
