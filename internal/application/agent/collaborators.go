package agent

import (
	"context"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/search"
	"github.com/agent-hub/agent-hub/internal/infrastructure/files"
	"github.com/agent-hub/agent-hub/internal/infrastructure/llm"
)

// LLM is the text generation backend used by the executors.
type LLM interface {
	GenerateText(ctx context.Context, prompt string, opts ...llm.Option) (string, error)
	AnalyzeText(ctx context.Context, text, analysisType string) (*llm.Analysis, error)
	Summarize(ctx context.Context, content string, maxLength int) (string, error)
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
	GenerateFileContent(ctx context.Context, fileType, description string, formatSpecs map[string]any) (string, error)
	ProcessSearchResults(ctx context.Context, query string, results []search.Result) (*llm.SearchDigest, error)
	GenerateTaskPlan(ctx context.Context, description string, executors []string) (*llm.TaskPlan, error)
	GenerateReport(ctx context.Context, data any, reportType string) (string, error)
	AnalyzeData(ctx context.Context, data any, kind string) (string, error)
	AnalyzeCode(ctx context.Context, code, language string) (*llm.CodeAnalysis, error)
}

type Searcher interface {
	Search(ctx context.Context, req search.Request) ([]search.Result, error)
}

type Files interface {
	Info(path string) (*files.Info, error)
	Process(path string, size int64) (*files.Content, error)
	Save(content, name, fileType string) (string, error)
}

// Plan is a generated execution plan with its parsed steps.
type Plan struct {
	TaskDescription    string   `json:"task_description"`
	AvailableExecutors []string `json:"available_executors"`
	ExecutionPlan      string   `json:"execution_plan"`
	Steps              []string `json:"steps"`
	Summary            string   `json:"summary"`
}

type Planner interface {
	Plan(ctx context.Context, description string) (*Plan, error)
}

// Coordinator runs subtasks on other executors.
type Coordinator interface {
	RunOn(ctx context.Context, executorID string, payload executor.Payload) (executor.Result, bool)
	Execute(ctx context.Context, executorType string, payload executor.Payload, userID int64) executor.Result
}
