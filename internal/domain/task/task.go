package task

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
)

// Status represents task status.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

const DefaultTaskType = "general"

var ErrInvalidTransition = errors.New("invalid task status transition")

// Record is the audit entry written for every dispatched task.
type Record struct {
	ID           int64           `json:"id"`
	TaskID       uuid.UUID       `json:"taskId"`
	UserID       int64           `json:"userId"`
	ExecutorID   string          `json:"executorId"`
	ExecutorType executor.Type   `json:"executorType"`
	TaskType     string          `json:"taskType"`
	Payload      json.RawMessage `json:"payload"`
	Status       Status          `json:"status"`
	Result       json.RawMessage `json:"result,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

// NewRecord creates a pending record for a payload about to run on exec.
func NewRecord(userID int64, exec *executor.Executor, payload executor.Payload) (*Record, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	taskType := payload.String("task_type")
	if taskType == "" {
		taskType = DefaultTaskType
	}
	return &Record{
		TaskID:       uuid.New(),
		UserID:       userID,
		ExecutorID:   exec.ExecutorID,
		ExecutorType: exec.ExecutorType,
		TaskType:     taskType,
		Payload:      raw,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// CanTransitionTo validates task status transition.
func (r *Record) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusPending:   {StatusRunning, StatusCompleted, StatusFailed},
		StatusRunning:   {StatusCompleted, StatusFailed},
		StatusCompleted: {},
		StatusFailed:    {},
	}
	for _, s := range transitions[r.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// Finish moves the record to its terminal status according to result.
func (r *Record) Finish(result executor.Result) error {
	target := StatusCompleted
	if !result.OK() {
		target = StatusFailed
	}
	if !r.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	raw, err := json.Marshal(result)
	if err != nil {
		raw, _ = json.Marshal(executor.Failure(err.Error()))
	}
	now := time.Now().UTC()
	r.Status = target
	r.Result = raw
	r.CompletedAt = &now
	return nil
}

// Stats summarizes recorded tasks.
type Stats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}
