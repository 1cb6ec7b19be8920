package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agent-hub/agent-hub/internal/application/registry"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
)

var ErrNotFound = errors.New("executor not found")

// Service keeps the live registry and the persisted executor catalog in
// step.
type Service struct {
	registry *registry.Registry
	repo     executor.Repository
	logger   zerolog.Logger
}

func NewService(reg *registry.Registry, repo executor.Repository, logger zerolog.Logger) *Service {
	return &Service{
		registry: reg,
		repo:     repo,
		logger:   logger.With().Str("service", "executor").Logger(),
	}
}

// Sync persists every registered executor. A stored INACTIVE status is
// restored onto the live executor first.
func (s *Service) Sync(ctx context.Context) error {
	for _, a := range s.registry.List() {
		stored, err := s.repo.GetByID(ctx, a.ExecutorID)
		if err != nil {
			return fmt.Errorf("load executor %s: %w", a.ExecutorID, err)
		}
		if stored != nil {
			if stored.Status == executor.StatusInactive {
				a.SetStatus(executor.StatusInactive)
			}
			rec := a.ToRecord()
			rec.CreatedAt = stored.CreatedAt
			if err := s.repo.Upsert(ctx, rec); err != nil {
				return fmt.Errorf("save executor %s: %w", a.ExecutorID, err)
			}
			continue
		}
		if err := s.repo.Upsert(ctx, a.ToRecord()); err != nil {
			return fmt.Errorf("save executor %s: %w", a.ExecutorID, err)
		}
	}
	s.logger.Info().Int("executors", len(s.registry.List())).Msg("executor catalog synced")
	return nil
}

// Get returns the live state of an executor.
func (s *Service) Get(executorID string) (executor.Snapshot, error) {
	a, ok := s.registry.Get(executorID)
	if !ok {
		return executor.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, executorID)
	}
	return a.Snapshot(), nil
}

func (s *Service) List() []executor.Snapshot {
	return s.registry.Snapshots()
}

func (s *Service) Activate(ctx context.Context, executorID string) (executor.Snapshot, error) {
	return s.setStatus(ctx, executorID, executor.StatusActive)
}

// Deactivate stops new work from reaching the executor. A task already
// running finishes normally.
func (s *Service) Deactivate(ctx context.Context, executorID string) (executor.Snapshot, error) {
	return s.setStatus(ctx, executorID, executor.StatusInactive)
}

func (s *Service) setStatus(ctx context.Context, executorID string, status executor.Status) (executor.Snapshot, error) {
	a, ok := s.registry.Get(executorID)
	if !ok {
		return executor.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, executorID)
	}
	a.SetStatus(status)
	if err := s.repo.UpdateStatus(ctx, executorID, status); err != nil {
		return executor.Snapshot{}, err
	}
	s.logger.Info().Str("executor_id", executorID).Str("status", string(status)).Msg("executor status changed")
	return a.Snapshot(), nil
}
