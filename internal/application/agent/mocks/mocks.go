package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/agent-hub/agent-hub/internal/application/agent"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/search"
	"github.com/agent-hub/agent-hub/internal/infrastructure/files"
	"github.com/agent-hub/agent-hub/internal/infrastructure/llm"
)

// LLM is a mock implementation of agent.LLM
type LLM struct {
	mock.Mock
}

func (m *LLM) GenerateText(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *LLM) AnalyzeText(ctx context.Context, text, analysisType string) (*llm.Analysis, error) {
	args := m.Called(ctx, text, analysisType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Analysis), args.Error(1)
}

func (m *LLM) Summarize(ctx context.Context, content string, maxLength int) (string, error) {
	args := m.Called(ctx, content, maxLength)
	return args.String(0), args.Error(1)
}

func (m *LLM) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	args := m.Called(ctx, text, targetLanguage)
	return args.String(0), args.Error(1)
}

func (m *LLM) GenerateFileContent(ctx context.Context, fileType, description string, formatSpecs map[string]any) (string, error) {
	args := m.Called(ctx, fileType, description, formatSpecs)
	return args.String(0), args.Error(1)
}

func (m *LLM) ProcessSearchResults(ctx context.Context, query string, results []search.Result) (*llm.SearchDigest, error) {
	args := m.Called(ctx, query, results)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.SearchDigest), args.Error(1)
}

func (m *LLM) GenerateTaskPlan(ctx context.Context, description string, executors []string) (*llm.TaskPlan, error) {
	args := m.Called(ctx, description, executors)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.TaskPlan), args.Error(1)
}

func (m *LLM) GenerateReport(ctx context.Context, data any, reportType string) (string, error) {
	args := m.Called(ctx, data, reportType)
	return args.String(0), args.Error(1)
}

func (m *LLM) AnalyzeData(ctx context.Context, data any, kind string) (string, error) {
	args := m.Called(ctx, data, kind)
	return args.String(0), args.Error(1)
}

func (m *LLM) AnalyzeCode(ctx context.Context, code, language string) (*llm.CodeAnalysis, error) {
	args := m.Called(ctx, code, language)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.CodeAnalysis), args.Error(1)
}

// Searcher is a mock implementation of agent.Searcher
type Searcher struct {
	mock.Mock
}

func (m *Searcher) Search(ctx context.Context, req search.Request) ([]search.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]search.Result), args.Error(1)
}

// Files is a mock implementation of agent.Files
type Files struct {
	mock.Mock
}

func (m *Files) Info(path string) (*files.Info, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*files.Info), args.Error(1)
}

func (m *Files) Process(path string, size int64) (*files.Content, error) {
	args := m.Called(path, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*files.Content), args.Error(1)
}

func (m *Files) Save(content, name, fileType string) (string, error) {
	args := m.Called(content, name, fileType)
	return args.String(0), args.Error(1)
}

// Planner is a mock implementation of agent.Planner
type Planner struct {
	mock.Mock
}

func (m *Planner) Plan(ctx context.Context, description string) (*agent.Plan, error) {
	args := m.Called(ctx, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*agent.Plan), args.Error(1)
}

// Coordinator is a mock implementation of agent.Coordinator
type Coordinator struct {
	mock.Mock
}

func (m *Coordinator) RunOn(ctx context.Context, executorID string, payload executor.Payload) (executor.Result, bool) {
	args := m.Called(ctx, executorID, payload)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(executor.Result), args.Bool(1)
}

func (m *Coordinator) Execute(ctx context.Context, executorType string, payload executor.Payload, userID int64) executor.Result {
	args := m.Called(ctx, executorType, payload, userID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(executor.Result)
}
