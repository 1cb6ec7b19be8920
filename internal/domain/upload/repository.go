package upload

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
)

// Repository defines upload persistence.
type Repository interface {
	Create(ctx context.Context, u *Upload) error
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Upload, error)
	Count(ctx context.Context) (int64, error)
}
