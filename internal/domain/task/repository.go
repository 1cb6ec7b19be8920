package task

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines task persistence.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, taskID uuid.UUID) (*Record, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Record, error)
	Stats(ctx context.Context) (*Stats, error)
}
