package agent_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agent-hub/agent-hub/internal/application/agent"
	"github.com/agent-hub/agent-hub/internal/application/agent/mocks"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/search"
	searchmocks "github.com/agent-hub/agent-hub/internal/domain/search/mocks"
	"github.com/agent-hub/agent-hub/internal/infrastructure/files"
	"github.com/agent-hub/agent-hub/internal/infrastructure/llm"
)

type fixture struct {
	llm         *mocks.LLM
	searcher    *mocks.Searcher
	files       *mocks.Files
	planner     *mocks.Planner
	coordinator *mocks.Coordinator
	searchLog   *searchmocks.MockRepository
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	return &fixture{
		llm:         &mocks.LLM{},
		searcher:    &mocks.Searcher{},
		files:       &mocks.Files{},
		planner:     &mocks.Planner{},
		coordinator: &mocks.Coordinator{},
		searchLog:   searchmocks.NewMockRepository(ctrl),
	}
}

func (f *fixture) deps() agent.Deps {
	return agent.Deps{
		LLM:         f.llm,
		Searcher:    f.searcher,
		Files:       f.files,
		SearchLog:   f.searchLog,
		Planner:     f.planner,
		Coordinator: f.coordinator,
	}
}

func (f *fixture) agent(t *testing.T, typ executor.Type) *agent.Agent {
	t.Helper()
	agents, err := agent.Build([]agent.Spec{{Type: string(typ), Count: 1}}, f.deps(), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, agents, 1)
	return agents[0]
}

func (f *fixture) assertNoCollaboratorCalls(t *testing.T) {
	t.Helper()
	assert.Empty(t, f.llm.Calls)
	assert.Empty(t, f.searcher.Calls)
	assert.Empty(t, f.files.Calls)
	assert.Empty(t, f.planner.Calls)
	assert.Empty(t, f.coordinator.Calls)
}

func TestMissingRequiredFieldSkipsCollaborators(t *testing.T) {
	for _, typ := range executor.Types {
		t.Run(string(typ), func(t *testing.T) {
			f := newFixture(t)
			a := f.agent(t, typ)

			res := a.Run(context.Background(), executor.Payload{"user_id": 1})

			assert.Equal(t, executor.StatusError, res.Status())
			assert.Contains(t, res.ErrorMessage(), "is required")
			assert.False(t, a.IsBusy())
			f.assertNoCollaboratorCalls(t)
		})
	}
}

type panicHandler struct{}

func (panicHandler) Handle(context.Context, executor.Payload) (executor.Result, error) {
	panic("boom")
}

type blockingHandler struct {
	started chan struct{}
	release chan struct{}
}

func (h blockingHandler) Handle(context.Context, executor.Payload) (executor.Result, error) {
	close(h.started)
	<-h.release
	return executor.Success(nil), nil
}

func TestRunLifecycle(t *testing.T) {
	t.Run("panic is recovered and busy cleared", func(t *testing.T) {
		a := agent.New(executor.New("x-1", executor.TypeSummarization, "X", nil), panicHandler{}, zerolog.Nop())
		res := a.Run(context.Background(), executor.Payload{})
		assert.Equal(t, executor.StatusError, res.Status())
		assert.Contains(t, res.ErrorMessage(), "boom")
		assert.False(t, a.IsBusy())
	})

	t.Run("collaborator error clears busy", func(t *testing.T) {
		f := newFixture(t)
		f.llm.On("Summarize", mock.Anything, "text", 500).Return("", errors.New("quota exceeded"))
		a := f.agent(t, executor.TypeSummarization)

		res := a.Run(context.Background(), executor.Payload{"content": "text"})
		assert.Equal(t, executor.StatusError, res.Status())
		assert.Contains(t, res.ErrorMessage(), "quota exceeded")
		assert.False(t, a.IsBusy())
	})

	t.Run("busy executor rejects a second run", func(t *testing.T) {
		h := blockingHandler{started: make(chan struct{}), release: make(chan struct{})}
		a := agent.New(executor.New("x-1", executor.TypeSummarization, "X", nil), h, zerolog.Nop())

		done := make(chan executor.Result)
		go func() { done <- a.Run(context.Background(), executor.Payload{}) }()
		<-h.started

		res := a.Run(context.Background(), executor.Payload{})
		assert.Contains(t, res.ErrorMessage(), "busy")

		close(h.release)
		assert.True(t, (<-done).OK())
		assert.False(t, a.IsBusy())
	})

	t.Run("inactive executor rejects runs", func(t *testing.T) {
		a := agent.New(executor.New("x-1", executor.TypeSummarization, "X", nil), panicHandler{}, zerolog.Nop())
		a.SetStatus(executor.StatusInactive)
		res := a.Run(context.Background(), executor.Payload{})
		assert.Contains(t, res.ErrorMessage(), "inactive")
	})
}

func TestFileAnalysis(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		f := newFixture(t)
		f.files.On("Info", "/tmp/none.txt").Return(&files.Info{Exists: false}, nil)

		res := f.agent(t, executor.TypeFileAnalysis).Run(ctx, executor.Payload{"file_path": "/tmp/none.txt"})
		assert.Contains(t, res.ErrorMessage(), "file not found")
		f.llm.AssertNotCalled(t, "AnalyzeText", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty content", func(t *testing.T) {
		f := newFixture(t)
		f.files.On("Info", "a.txt").Return(&files.Info{Exists: true, FileSize: 3}, nil)
		f.files.On("Process", "a.txt", int64(3)).Return(&files.Content{Content: "  "}, nil)

		res := f.agent(t, executor.TypeFileAnalysis).Run(ctx, executor.Payload{"file_path": "a.txt"})
		assert.Equal(t, executor.StatusError, res.Status())
		f.llm.AssertNotCalled(t, "AnalyzeText", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)
		info := &files.Info{Exists: true, FileSize: 5, FileType: "text"}
		content := &files.Content{FileType: "text", Content: "hello"}
		f.files.On("Info", "a.txt").Return(info, nil)
		f.files.On("Process", "a.txt", int64(5)).Return(content, nil)
		f.llm.On("AnalyzeText", mock.Anything, "hello", "general").
			Return(&llm.Analysis{AnalysisType: "general", AnalysisResult: "greeting"}, nil)

		res := f.agent(t, executor.TypeFileAnalysis).Run(ctx, executor.Payload{"file_path": "a.txt"})
		require.True(t, res.OK(), res.ErrorMessage())
		assert.Equal(t, "greeting", res["analysis_result"])
		assert.Equal(t, info, res["file_info"])
		assert.Equal(t, content, res["file_content"])
		f.llm.AssertExpectations(t)
	})
}

func TestWebSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("no results", func(t *testing.T) {
		f := newFixture(t)
		f.searcher.On("Search", mock.Anything, search.Request{Query: "golang", Mode: search.ModeNews}).
			Return([]search.Result{}, nil)
		f.searchLog.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		res := f.agent(t, executor.TypeWebSearch).Run(ctx, executor.Payload{"query": "golang", "search_type": "news"})
		require.True(t, res.OK())
		assert.Equal(t, "no results found", res["message"])
		assert.Empty(t, res["results"])
		f.llm.AssertNotCalled(t, "ProcessSearchResults", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("digest and search log", func(t *testing.T) {
		f := newFixture(t)
		results := []search.Result{{Title: "Go", Link: "https://go.dev"}}
		f.searcher.On("Search", mock.Anything, search.Request{Query: "golang", Mode: search.ModeWeb, MaxResults: 5}).
			Return(results, nil)
		f.llm.On("ProcessSearchResults", mock.Anything, "golang", results).
			Return(&llm.SearchDigest{Query: "golang", Results: results, Analysis: "a", Summary: "s"}, nil)
		f.searchLog.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rec *search.Record) error {
			assert.Equal(t, int64(42), rec.UserID)
			assert.Equal(t, 1, rec.ResultsCount)
			return nil
		})

		res := f.agent(t, executor.TypeWebSearch).Run(ctx, executor.Payload{"query": "golang", "max_results": 5, "user_id": 42})
		require.True(t, res.OK(), res.ErrorMessage())
		assert.Equal(t, "a", res["analysis"])
		assert.Equal(t, "s", res["summary"])
		assert.Equal(t, results, res["search_results"])
	})

	t.Run("search log failure is ignored", func(t *testing.T) {
		f := newFixture(t)
		f.searcher.On("Search", mock.Anything, mock.Anything).Return([]search.Result{}, nil)
		f.searchLog.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		res := f.agent(t, executor.TypeWebSearch).Run(ctx, executor.Payload{"query": "golang"})
		assert.True(t, res.OK())
	})
}

func TestSummarization(t *testing.T) {
	ctx := context.Background()

	t.Run("key points", func(t *testing.T) {
		f := newFixture(t)
		f.llm.On("Summarize", mock.Anything, "long text", 100).Return("short", nil)
		f.llm.On("AnalyzeText", mock.Anything, "long text", "summary").
			Return(&llm.Analysis{AnalysisType: "summary", AnalysisResult: "- a\n- b"}, nil)

		res := f.agent(t, executor.TypeSummarization).Run(ctx, executor.Payload{
			"content": "long text", "summary_type": "key_points", "max_length": 100,
		})
		require.True(t, res.OK(), res.ErrorMessage())
		assert.Equal(t, "short", res["summary"])
		assert.Equal(t, "- a\n- b", res["key_points"])
		assert.Equal(t, 9, res["original_length"])
		assert.Equal(t, 5, res["summary_length"])
	})

	t.Run("translated", func(t *testing.T) {
		f := newFixture(t)
		f.llm.On("Summarize", mock.Anything, "text", 500).Return("short", nil)
		f.llm.On("Translate", mock.Anything, "short", "Arabic").Return("قصير", nil)

		res := f.agent(t, executor.TypeSummarization).Run(ctx, executor.Payload{"content": "text", "target_language": "Arabic"})
		require.True(t, res.OK())
		assert.Equal(t, "قصير", res["summary"])
		_, hasKeyPoints := res["key_points"]
		assert.False(t, hasKeyPoints)
	})
}

func TestFileGeneration(t *testing.T) {
	f := newFixture(t)
	f.llm.On("GenerateFileContent", mock.Anything, "text", "a poem", map[string]any(nil)).Return("roses", nil)
	f.files.On("Save", "roses", mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "generated_file_")
	}), "text").Return("/out/generated_file_x.txt", nil)

	res := f.agent(t, executor.TypeFileGeneration).Run(context.Background(), executor.Payload{
		"file_type": "text", "content_description": "a poem",
	})
	require.True(t, res.OK(), res.ErrorMessage())
	assert.Equal(t, "/out/generated_file_x.txt", res["file_path"])
	assert.Equal(t, "generated_file_x.txt", res["file_name"])
	assert.Equal(t, 5, res["content_length"])
	_, err := time.Parse(time.RFC3339, res["generated_at"].(string))
	assert.NoError(t, err)
}

func TestDataAnalysis(t *testing.T) {
	ctx := context.Background()
	data := []any{1.0, 2.0, 3.0}

	t.Run("statistical", func(t *testing.T) {
		f := newFixture(t)
		f.llm.On("AnalyzeData", mock.Anything, data, "statistical").Return("mean 2", nil)
		f.llm.On("GenerateReport", mock.Anything, data, "statistical").Return("report", nil)

		res := f.agent(t, executor.TypeDataAnalysis).Run(ctx, executor.Payload{"data": data, "analysis_type": "statistical"})
		require.True(t, res.OK(), res.ErrorMessage())
		assert.Equal(t, "mean 2", res["analysis_result"])
		summary := res["data_summary"].(map[string]any)
		assert.Equal(t, "list", summary["data_type"])
		assert.Equal(t, "statistical", summary["analysis_type"])
	})

	t.Run("general uses technical text analysis", func(t *testing.T) {
		f := newFixture(t)
		f.llm.On("AnalyzeText", mock.Anything, "sales up", "technical").
			Return(&llm.Analysis{AnalysisType: "technical", AnalysisResult: "ok"}, nil)
		f.llm.On("GenerateReport", mock.Anything, "sales up", "general").Return("report", nil)

		res := f.agent(t, executor.TypeDataAnalysis).Run(ctx, executor.Payload{"data": "sales up"})
		require.True(t, res.OK(), res.ErrorMessage())
		f.llm.AssertNotCalled(t, "AnalyzeData", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty data is rejected", func(t *testing.T) {
		for _, empty := range []any{nil, "  ", []any{}, map[string]any{}, 0.0, 0, false} {
			f := newFixture(t)
			res := f.agent(t, executor.TypeDataAnalysis).Run(ctx, executor.Payload{"data": empty})
			assert.Equal(t, executor.StatusError, res.Status(), "%#v", empty)
			assert.Contains(t, res.ErrorMessage(), "data", "%#v", empty)
			f.llm.AssertNotCalled(t, "AnalyzeData", mock.Anything, mock.Anything, mock.Anything)
		}
	})
}

func TestTaskManagement(t *testing.T) {
	ctx := context.Background()

	t.Run("planning", func(t *testing.T) {
		f := newFixture(t)
		f.planner.On("Plan", mock.Anything, "launch").Return(&agent.Plan{
			TaskDescription: "launch",
			ExecutionPlan:   "Step 1: search",
			Steps:           []string{"search"},
			Summary:         "s",
		}, nil)

		res := f.agent(t, executor.TypeTaskManagement).Run(ctx, executor.Payload{"task_description": "launch", "task_type": "planning"})
		require.True(t, res.OK(), res.ErrorMessage())
		assert.Equal(t, []string{"search"}, res["steps"])
	})

	t.Run("unsupported task type", func(t *testing.T) {
		f := newFixture(t)
		res := f.agent(t, executor.TypeTaskManagement).Run(ctx, executor.Payload{"task_description": "x", "task_type": "general"})
		assert.Equal(t, "unsupported task type: general", res.ErrorMessage())
	})

	t.Run("coordination", func(t *testing.T) {
		f := newFixture(t)
		f.coordinator.On("RunOn", mock.Anything, "summarization-1", executor.Payload{
			"subtask_id": "a", "content": "text", "user_id": int64(9),
		}).Return(executor.Success(map[string]any{"summary": "s"}), true)
		f.coordinator.On("RunOn", mock.Anything, "ghost-1", mock.Anything).Return(nil, false)
		f.coordinator.On("Execute", mock.Anything, "web-search", mock.Anything, int64(9)).
			Return(executor.Success(nil))

		res := f.agent(t, executor.TypeTaskManagement).Run(ctx, executor.Payload{
			"task_description": "coordinate",
			"task_type":        "coordination",
			"user_id":          9,
			"subtasks": []any{
				map[string]any{"subtask_id": "a", "executor_id": "summarization-1", "content": "text"},
				map[string]any{"subtask_id": "b", "agent_id": "ghost-1", "condition": "[previous.status] == 'success'"},
				map[string]any{"subtask_id": "c", "executor_type": "web-search", "query": "go", "condition": "completed > 5"},
				map[string]any{"subtask_id": "d", "executor_type": "web-search", "query": "go", "condition": "completed >= 1"},
			},
		})
		require.True(t, res.OK(), res.ErrorMessage())
		assert.Equal(t, 4, res["total_subtasks"])
		assert.Equal(t, 2, res["completed_subtasks"])
		assert.Equal(t, 1, res["skipped_subtasks"])

		entries := res["subtasks_results"].([]map[string]any)
		require.Len(t, entries, 4)
		assert.Equal(t, "executor not found", entries[1]["result"].(executor.Result).ErrorMessage())
		assert.Equal(t, map[string]any{"status": "skipped"}, entries[2]["result"])
		f.coordinator.AssertNumberOfCalls(t, "Execute", 1)
	})
}

func TestStepPayload(t *testing.T) {
	f := newFixture(t)
	cases := map[executor.Type]map[string]any{
		executor.TypeWebSearch:      {"query": "step"},
		executor.TypeSummarization:  {"content": "step"},
		executor.TypeDataAnalysis:   {"data": "step"},
		executor.TypeFileGeneration: {"content_description": "step", "file_type": "text"},
		executor.TypeFileAnalysis:   {},
		executor.TypeTaskManagement: {},
	}
	for typ, extra := range cases {
		p := f.agent(t, typ).StepPayload("step", 3)
		assert.Equal(t, "step", p["task_description"], typ)
		assert.Equal(t, int64(3), p["user_id"], typ)
		assert.Equal(t, agent.StepTaskType, p["task_type"], typ)
		assert.Len(t, p, 3+len(extra), typ)
		for k, v := range extra {
			assert.Equal(t, v, p[k], typ)
		}
	}
}

func TestBuildNumbersPerType(t *testing.T) {
	f := newFixture(t)
	agents, err := agent.Build([]agent.Spec{
		{Type: "web-search", Count: 2},
		{Type: "summarization"},
		{Type: "web-search", Count: 1},
	}, f.deps(), zerolog.Nop())
	require.NoError(t, err)

	var ids []string
	for _, a := range agents {
		ids = append(ids, a.ExecutorID)
	}
	assert.Equal(t, []string{"web-search-1", "web-search-2", "summarization-1", "web-search-3"}, ids)

	_, err = agent.Build([]agent.Spec{{Type: "painter"}}, f.deps(), zerolog.Nop())
	assert.Error(t, err)
}

func TestEvaluateCondition(t *testing.T) {
	vars := map[string]any{
		"previous":  executor.Success(map[string]any{"count": 3}),
		"completed": 2,
	}
	cases := []struct {
		cond string
		want bool
	}{
		{"", true},
		{"FALSE", false},
		{"[previous.status] == 'success'", true},
		{"[previous.count] > 2 && completed == 2", true},
		{"completed > 2", false},
	}
	for _, tc := range cases {
		got, err := agent.EvaluateCondition(tc.cond, vars)
		require.NoError(t, err, tc.cond)
		assert.Equal(t, tc.want, got, tc.cond)
	}

	_, err := agent.EvaluateCondition("completed + 1", vars)
	assert.Error(t, err)
}
