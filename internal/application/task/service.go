package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agent-hub/agent-hub/internal/domain/search"
	"github.com/agent-hub/agent-hub/internal/domain/task"
	"github.com/agent-hub/agent-hub/internal/domain/upload"
)

var ErrNotFound = errors.New("task not found")

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Service reads task, search and upload history.
type Service struct {
	tasks    task.Repository
	searches search.Repository
	uploads  upload.Repository
	logger   zerolog.Logger
}

func NewService(tasks task.Repository, searches search.Repository, uploads upload.Repository, logger zerolog.Logger) *Service {
	return &Service{
		tasks:    tasks,
		searches: searches,
		uploads:  uploads,
		logger:   logger.With().Str("service", "task").Logger(),
	}
}

func (s *Service) Get(ctx context.Context, taskID uuid.UUID) (*task.Record, error) {
	rec, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, taskID)
	}
	return rec, nil
}

func (s *Service) ListTasks(ctx context.Context, userID int64, limit, offset int) ([]*task.Record, error) {
	limit, offset = clamp(limit, offset)
	return s.tasks.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) ListSearches(ctx context.Context, userID int64, limit, offset int) ([]*search.Record, error) {
	limit, offset = clamp(limit, offset)
	return s.searches.ListByUser(ctx, userID, limit, offset)
}

// RecordUpload stores a received upload.
func (s *Service) RecordUpload(ctx context.Context, u *upload.Upload) error {
	if err := s.uploads.Create(ctx, u); err != nil {
		s.logger.Error().Err(err).Str("file_name", u.FileName).Msg("record upload failed")
		return err
	}
	return nil
}

// Stats are the totals shown on the admin dashboard.
type Stats struct {
	Tasks    task.Stats `json:"tasks"`
	Searches int64      `json:"searches"`
	Uploads  int64      `json:"uploads"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	ts, err := s.tasks.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	searches, err := s.searches.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("search count: %w", err)
	}
	uploads, err := s.uploads.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("upload count: %w", err)
	}
	out := &Stats{Searches: searches, Uploads: uploads}
	if ts != nil {
		out.Tasks = *ts
	}
	return out, nil
}

func clamp(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
