package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
)

const (
	TaskTypePlanning     = "planning"
	TaskTypeCoordination = "coordination"
)

const subtaskSkipped = "skipped"

type taskManagementRequest struct {
	TaskDescription string           `mapstructure:"task_description"`
	TaskType        string           `mapstructure:"task_type"`
	Subtasks        []map[string]any `mapstructure:"subtasks"`
	UserID          int64            `mapstructure:"user_id"`
}

func (r *taskManagementRequest) Validate() error {
	if strings.TrimSpace(r.TaskDescription) == "" {
		return missing("task_description")
	}
	return nil
}

// subtask routing keys; everything else is passed to the target executor.
type subtask struct {
	SubtaskID    any    `mapstructure:"subtask_id"`
	ExecutorID   string `mapstructure:"executor_id"`
	AgentID      string `mapstructure:"agent_id"`
	ExecutorType string `mapstructure:"executor_type"`
	Condition    string `mapstructure:"condition"`
}

func (s subtask) target() string {
	if s.ExecutorID != "" {
		return s.ExecutorID
	}
	return s.AgentID
}

var routingKeys = []string{"executor_id", "agent_id", "executor_type", "condition"}

// TaskManager plans tasks and coordinates subtasks across executors.
type TaskManager struct {
	planner     Planner
	coordinator Coordinator
}

func NewTaskManager(p Planner, c Coordinator) *TaskManager {
	return &TaskManager{planner: p, coordinator: c}
}

func (h *TaskManager) Handle(ctx context.Context, payload executor.Payload) (executor.Result, error) {
	var req taskManagementRequest
	if err := decode(payload, &req); err != nil {
		return nil, err
	}

	switch req.TaskType {
	case TaskTypePlanning:
		plan, err := h.planner.Plan(ctx, req.TaskDescription)
		if err != nil {
			return nil, err
		}
		return executor.Success(map[string]any{
			"task_description":    plan.TaskDescription,
			"available_executors": plan.AvailableExecutors,
			"execution_plan":      plan.ExecutionPlan,
			"steps":               plan.Steps,
			"summary":             plan.Summary,
		}), nil
	case TaskTypeCoordination:
		return h.coordinate(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported task type: %s", req.TaskType)
	}
}

func (h *TaskManager) coordinate(ctx context.Context, req taskManagementRequest) (executor.Result, error) {
	results := make([]map[string]any, 0, len(req.Subtasks))
	var (
		previous  executor.Result
		completed int
		skipped   int
	)
	for _, raw := range req.Subtasks {
		var st subtask
		if err := executor.Payload(raw).Decode(&st); err != nil {
			return nil, &ValidationError{Field: "subtasks", Message: err.Error()}
		}
		entry := map[string]any{"subtask_id": st.SubtaskID}
		if id := st.target(); id != "" {
			entry["executor_id"] = id
		} else {
			entry["executor_type"] = st.ExecutorType
		}

		ok, err := EvaluateCondition(st.Condition, map[string]any{
			"previous":  previous,
			"completed": completed,
		})
		switch {
		case err != nil:
			entry["result"] = executor.Failuref("invalid condition: %v", err)
			results = append(results, entry)
			continue
		case !ok:
			entry["result"] = map[string]any{"status": subtaskSkipped}
			skipped++
			results = append(results, entry)
			continue
		}

		payload := executor.Payload(raw).Clone()
		for _, k := range routingKeys {
			delete(payload, k)
		}
		if _, has := payload["user_id"]; !has {
			payload["user_id"] = req.UserID
		}

		var res executor.Result
		switch {
		case st.target() != "":
			var found bool
			if res, found = h.coordinator.RunOn(ctx, st.target(), payload); !found {
				res = executor.Failure("executor not found")
			}
		case st.ExecutorType != "":
			res = h.coordinator.Execute(ctx, st.ExecutorType, payload, req.UserID)
		default:
			res = executor.Failure("executor not found")
		}
		if res.OK() {
			completed++
		}
		previous = res
		entry["result"] = res
		results = append(results, entry)
	}
	return executor.Success(map[string]any{
		"subtasks_results":   results,
		"total_subtasks":     len(req.Subtasks),
		"completed_subtasks": completed,
		"skipped_subtasks":   skipped,
	}), nil
}
