package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/agent-hub/agent-hub/internal/application/agent"
	"github.com/agent-hub/agent-hub/internal/application/registry"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/task"
)

const EventTaskCompleted = "task.completed"

// Publisher delivers task events to subscribers.
type Publisher interface {
	Publish(event string, userID int64, data any) error
}

// Event is the payload of a task.completed event.
type Event struct {
	TaskID       string          `json:"task_id,omitempty"`
	UserID       int64           `json:"user_id"`
	ExecutorID   string          `json:"executor_id"`
	ExecutorType executor.Type   `json:"executor_type"`
	Status       string          `json:"status"`
	Result       executor.Result `json:"result"`
}

// Dispatcher routes payloads to executors and records every run.
type Dispatcher struct {
	registry  *registry.Registry
	tasks     task.Repository
	publisher Publisher
	metrics   *Metrics
	logger    zerolog.Logger
}

// New creates a dispatcher. publisher and metrics may be nil.
func New(reg *registry.Registry, tasks task.Repository, publisher Publisher, metrics *Metrics, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  reg,
		tasks:     tasks,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("service", "dispatch").Logger(),
	}
}

// Execute runs payload on the first available executor of typ and
// returns the executor's result unchanged.
func (d *Dispatcher) Execute(ctx context.Context, typ string, payload executor.Payload, userID int64) executor.Result {
	execType, err := executor.ParseType(typ)
	if err != nil {
		return executor.Failuref("no executor of type %q", typ)
	}
	a, err := d.registry.Acquire(execType)
	switch {
	case errors.Is(err, registry.ErrNoExecutor):
		return executor.Failuref("no executor of type %q", typ)
	case errors.Is(err, registry.ErrAllBusy):
		d.logger.Warn().Str("executor_type", typ).Msg("all executors busy")
		return executor.Failuref("all executors of type %q are busy", typ)
	case err != nil:
		return executor.Failure(err.Error())
	}
	return d.run(ctx, a, payload, userID, true)
}

// RunOn runs payload on the executor with id. The bool is false when no
// such executor exists.
func (d *Dispatcher) RunOn(ctx context.Context, executorID string, payload executor.Payload) (executor.Result, bool) {
	a, ok := d.registry.Get(executorID)
	if !ok {
		return nil, false
	}
	var owner struct {
		UserID int64 `mapstructure:"user_id"`
	}
	if err := payload.Decode(&owner); err != nil {
		d.logger.Warn().Err(err).
			Str("executor_id", executorID).
			Interface("user_id", payload["user_id"]).
			Msg("malformed user_id in step payload, recording as user 0")
		owner.UserID = 0
	}
	return d.run(ctx, a, payload, owner.UserID, false), true
}

// RunAcquired runs payload on an executor the caller already acquired.
func (d *Dispatcher) RunAcquired(ctx context.Context, a *agent.Agent, payload executor.Payload, userID int64) executor.Result {
	return d.run(ctx, a, payload, userID, true)
}

func (d *Dispatcher) run(ctx context.Context, a *agent.Agent, payload executor.Payload, userID int64, acquired bool) executor.Result {
	rec, recErr := task.NewRecord(userID, a.Executor, payload)

	start := time.Now()
	var result executor.Result
	if acquired {
		result = a.RunAcquired(ctx, payload)
	} else {
		result = a.Run(ctx, payload)
	}
	elapsed := time.Since(start)

	d.metrics.observeDispatch(string(a.ExecutorType), result.Status(), elapsed)
	d.logger.Info().
		Str("executor_id", a.ExecutorID).
		Int64("user_id", userID).
		Str("status", result.Status()).
		Dur("elapsed", elapsed).
		Msg("task finished")

	event := Event{
		UserID:       userID,
		ExecutorID:   a.ExecutorID,
		ExecutorType: a.ExecutorType,
		Status:       result.Status(),
		Result:       result,
	}
	if recErr != nil {
		d.logger.Error().Err(recErr).Str("executor_id", a.ExecutorID).Msg("build task record failed")
	} else {
		event.TaskID = rec.TaskID.String()
		d.record(ctx, rec, result)
	}
	if d.publisher != nil {
		if err := d.publisher.Publish(EventTaskCompleted, userID, event); err != nil {
			d.logger.Warn().Err(err).Msg("publish task event failed")
		}
	}
	return result
}

func (d *Dispatcher) record(ctx context.Context, rec *task.Record, result executor.Result) {
	if d.tasks == nil {
		return
	}
	if err := rec.Finish(result); err != nil {
		d.logger.Error().Err(err).Str("task_id", rec.TaskID.String()).Msg("finish task record failed")
		return
	}
	if err := d.tasks.Create(context.WithoutCancel(ctx), rec); err != nil {
		d.logger.Error().Err(err).Str("task_id", rec.TaskID.String()).Msg("persist task failed")
	}
}

// StepsSkipped forwards skipped plan steps to the metrics.
func (d *Dispatcher) StepsSkipped(n int) {
	d.metrics.StepsSkipped(n)
}
