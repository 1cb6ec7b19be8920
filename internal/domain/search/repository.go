package search

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
)

// Repository defines search log persistence.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Record, error)
	Count(ctx context.Context) (int64, error)
}
