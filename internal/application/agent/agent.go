package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
)

const StepTaskType = "step_execution"

// Handler implements the behavior of one executor type.
type Handler interface {
	Handle(ctx context.Context, payload executor.Payload) (executor.Result, error)
}

// StepAliaser is implemented by handlers whose primary input field should
// also carry a plan step.
type StepAliaser interface {
	StepFields(step string) map[string]any
}

// ValidationError reports a payload that cannot be run.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid payload: " + e.Message
	}
	return fmt.Sprintf("invalid payload: %s %s", e.Field, e.Message)
}

func missing(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

type request interface {
	Validate() error
}

// decode copies payload into req and validates it.
func decode(payload executor.Payload, req request) error {
	if err := payload.Decode(req); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return req.Validate()
}

// Agent binds an executor's lifecycle state to its handler.
type Agent struct {
	*executor.Executor

	handler Handler
	logger  zerolog.Logger
}

func New(exec *executor.Executor, handler Handler, logger zerolog.Logger) *Agent {
	return &Agent{
		Executor: exec,
		handler:  handler,
		logger: logger.With().
			Str("executor_id", exec.ExecutorID).
			Str("executor_type", string(exec.ExecutorType)).
			Logger(),
	}
}

// Run acquires the executor, runs payload and releases it.
func (a *Agent) Run(ctx context.Context, payload executor.Payload) executor.Result {
	if !a.TryAcquire() {
		if !a.IsActive() {
			return executor.Failuref("executor %s is inactive", a.ExecutorID)
		}
		return executor.Failuref("executor %s is busy", a.ExecutorID)
	}
	return a.RunAcquired(ctx, payload)
}

// RunAcquired runs payload on an executor the caller already acquired
// and releases it afterwards.
func (a *Agent) RunAcquired(ctx context.Context, payload executor.Payload) (result executor.Result) {
	defer a.Release()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().Interface("panic", r).Msg("executor panicked")
			result = executor.Failuref("executor %s failed: %v", a.ExecutorID, r)
		}
	}()

	a.Touch()
	result, err := a.handler.Handle(ctx, payload)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			a.logger.Warn().Err(err).Msg("rejected payload")
		} else {
			a.logger.Error().Err(err).Msg("task failed")
		}
		return executor.Failure(err.Error())
	}
	if result == nil {
		return executor.Failure("executor returned no result")
	}
	return result
}

// StepPayload builds the payload that runs one plan step on this executor.
func (a *Agent) StepPayload(step string, userID int64) executor.Payload {
	p := executor.Payload{
		"task_description": step,
		"user_id":          userID,
		"task_type":        StepTaskType,
	}
	if al, ok := a.handler.(StepAliaser); ok {
		for k, v := range al.StepFields(step) {
			p[k] = v
		}
	}
	return p
}
