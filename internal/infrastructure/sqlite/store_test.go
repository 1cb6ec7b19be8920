package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/search"
	"github.com/agent-hub/agent-hub/internal/domain/task"
	"github.com/agent-hub/agent-hub/internal/domain/upload"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "hub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hub.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(context.Background()))
}

func TestExecutorRepository(t *testing.T) {
	repo := newTestStore(t).Executors()
	ctx := context.Background()

	missing, err := repo.GetByID(ctx, "web-search-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	rec := executor.New("web-search-1", executor.TypeWebSearch, "Web Searcher", []string{"web_search", "news_search"}).ToRecord()
	require.NoError(t, repo.Upsert(ctx, rec))

	got, err := repo.GetByID(ctx, "web-search-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, executor.TypeWebSearch, got.ExecutorType)
	assert.Equal(t, []string{"web_search", "news_search"}, got.Capabilities)
	assert.Equal(t, executor.StatusActive, got.Status)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, repo.UpdateStatus(ctx, "web-search-1", executor.StatusInactive))
	got, err = repo.GetByID(ctx, "web-search-1")
	require.NoError(t, err)
	assert.Equal(t, executor.StatusInactive, got.Status)

	rec.DisplayName = "Searcher"
	require.NoError(t, repo.Upsert(ctx, rec))
	list, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Searcher", list[0].DisplayName)
}

func TestTaskRepository(t *testing.T) {
	repo := newTestStore(t).Tasks()
	ctx := context.Background()
	exec := executor.New("summarization-1", executor.TypeSummarization, "Content Summarizer", nil)

	first, err := task.NewRecord(9, exec, executor.Payload{"content": "a"})
	require.NoError(t, err)
	require.NoError(t, first.Finish(executor.Success(executor.Payload{"summary": "x"})))
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)

	second, err := task.NewRecord(9, exec, executor.Payload{"content": ""})
	require.NoError(t, err)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, second.Finish(executor.Failure("invalid payload: content is required")))
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.GetByID(ctx, first.TaskID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.StatusCompleted, got.Status)
	assert.Equal(t, executor.TypeSummarization, got.ExecutorType)
	assert.JSONEq(t, `{"content":"a"}`, string(got.Payload))
	assert.JSONEq(t, `{"status":"success","summary":"x"}`, string(got.Result))
	require.NotNil(t, got.CompletedAt)

	none, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)

	list, err := repo.ListByUser(ctx, 9, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.TaskID, list[0].TaskID)

	list, err = repo.ListByUser(ctx, 9, 1, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.TaskID, list[0].TaskID)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, task.Stats{Total: 2, Completed: 1, Failed: 1}, *stats)
}

func TestSearchAndUploadRepositories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &search.Record{UserID: 4, Query: "go", SearchType: search.ModeNews, ResultsCount: 3, CreatedAt: time.Now().UTC()}
	require.NoError(t, s.Searches().Create(ctx, rec))
	assert.NotZero(t, rec.ID)

	searches, err := s.Searches().ListByUser(ctx, 4, 10, 0)
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, search.ModeNews, searches[0].SearchType)
	n, err := s.Searches().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u := upload.New(4, "notes.txt", "text/plain", 12, "/tmp/notes.txt")
	require.NoError(t, s.Uploads().Create(ctx, u))
	uploads, err := s.Uploads().ListByUser(ctx, 4, 10, 0)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, u.UploadID, uploads[0].UploadID)
	assert.Equal(t, int64(12), uploads[0].FileSize)

	empty, err := s.Uploads().ListByUser(ctx, 5, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
