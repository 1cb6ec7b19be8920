package planner

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agent-hub/agent-hub/internal/application/agent"
	"github.com/agent-hub/agent-hub/internal/application/registry"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/infrastructure/llm"
)

const planSummaryLength = 250

// PlanLLM generates plans.
type PlanLLM interface {
	GenerateTaskPlan(ctx context.Context, description string, executors []string) (*llm.TaskPlan, error)
	Summarize(ctx context.Context, content string, maxLength int) (string, error)
}

// Runner executes an acquired step and records it.
type Runner interface {
	RunAcquired(ctx context.Context, a *agent.Agent, payload executor.Payload, userID int64) executor.Result
	StepsSkipped(n int)
}

// Bridge turns a free-text request into a plan and runs its steps on the
// best matching executors.
type Bridge struct {
	registry *registry.Registry
	llm      PlanLLM
	runner   Runner
	logger   zerolog.Logger
}

func New(reg *registry.Registry, l PlanLLM, runner Runner, logger zerolog.Logger) *Bridge {
	return &Bridge{
		registry: reg,
		llm:      l,
		runner:   runner,
		logger:   logger.With().Str("service", "planner").Logger(),
	}
}

// Plan asks the LLM for a plan over the active executors.
func (b *Bridge) Plan(ctx context.Context, description string) (*agent.Plan, error) {
	active := b.registry.ListActive()
	names := make([]string, 0, len(active))
	for _, a := range active {
		names = append(names, a.DisplayName)
	}
	tp, err := b.llm.GenerateTaskPlan(ctx, description, names)
	if err != nil {
		return nil, err
	}
	summary := tp.Summary
	if summary == "" {
		if summary, err = b.llm.Summarize(ctx, tp.ExecutionPlan, planSummaryLength); err != nil {
			return nil, err
		}
	}
	return &agent.Plan{
		TaskDescription:    description,
		AvailableExecutors: names,
		ExecutionPlan:      tp.ExecutionPlan,
		Steps:              ParseSteps(tp.ExecutionPlan),
		Summary:            summary,
	}, nil
}

// StepResult is the outcome of one executed plan step.
type StepResult struct {
	Step         string          `json:"step"`
	ExecutorID   string          `json:"executor_id"`
	ExecutorName string          `json:"executor_name"`
	Result       executor.Result `json:"result"`
}

// PlanAndExecute plans description and runs each step sequentially.
// Steps without a matching idle executor are skipped and counted.
func (b *Bridge) PlanAndExecute(ctx context.Context, description string, userID int64) executor.Result {
	plan, err := b.Plan(ctx, description)
	if err != nil {
		b.logger.Error().Err(err).Msg("plan generation failed")
		return executor.Failure(err.Error())
	}

	results := make([]StepResult, 0, len(plan.Steps))
	skipped := 0
	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return executor.Failure(err.Error())
		}
		a := b.acquireBest(step)
		if a == nil {
			skipped++
			b.logger.Debug().Str("step", step).Msg("no executor matches step")
			continue
		}
		res := b.runner.RunAcquired(ctx, a, a.StepPayload(step, userID), userID)
		results = append(results, StepResult{
			Step:         step,
			ExecutorID:   a.ExecutorID,
			ExecutorName: a.DisplayName,
			Result:       res,
		})
	}
	b.runner.StepsSkipped(skipped)

	return executor.Success(map[string]any{
		"task_description":  description,
		"execution_plan":    plan.ExecutionPlan,
		"execution_results": results,
		"summary":           plan.Summary,
		"skipped_steps":     skipped,
	})
}

// acquireBest picks the best matching idle executor for step and marks it
// busy. A lost race moves on to the next best candidate.
func (b *Bridge) acquireBest(step string) *agent.Agent {
	candidates := b.registry.ListActive()
	for len(candidates) > 0 {
		i := BestMatch(step, candidates)
		if i < 0 {
			return nil
		}
		if candidates[i].TryAcquire() {
			return candidates[i]
		}
		candidates = append(candidates[:i:i], candidates[i+1:]...)
	}
	return nil
}

// BestMatch returns the index of the idle candidate with the most capability
// tags contained in step, or -1 when none matches. Ties keep the earlier
// candidate.
func BestMatch(step string, candidates []*agent.Agent) int {
	lower := strings.ToLower(step)
	best, bestScore := -1, 0
	for i, a := range candidates {
		if !a.IsAvailable() {
			continue
		}
		score := 0
		for _, tag := range a.Capabilities {
			if strings.Contains(lower, strings.ToLower(tag)) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// ParseSteps extracts one step per plan line: the text after the first
// colon. Blank lines and lines without a colon are ignored.
func ParseSteps(plan string) []string {
	var steps []string
	for _, line := range strings.Split(plan, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		_, after, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if step := strings.TrimSpace(after); step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}
