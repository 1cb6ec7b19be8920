package executor

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
)

// Repository defines executor catalog persistence.
type Repository interface {
	Upsert(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, executorID string) (*Record, error)
	List(ctx context.Context, limit, offset int) ([]*Record, error)
	UpdateStatus(ctx context.Context, executorID string, status Status) error
}
