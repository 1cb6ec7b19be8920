package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agent-hub/agent-hub/internal/config"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/search"
	"github.com/agent-hub/agent-hub/internal/infrastructure/files"
	"github.com/agent-hub/agent-hub/internal/infrastructure/llm"
)

type cannedProvider struct{ reply string }

func (p cannedProvider) Complete(context.Context, llm.Request) (string, error) {
	return p.reply, nil
}

type noResults struct{}

func (noResults) Search(context.Context, search.Request) ([]search.Result, error) {
	return nil, nil
}

func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	t.Setenv("AGENTHUB_STORAGE__SQLITE_PATH", filepath.Join(dir, "hub.db"))
	t.Setenv("AGENTHUB_FILES__UPLOAD_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("AGENTHUB_FILES__OUTPUT_DIR", filepath.Join(dir, "outputs"))
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	ctx := context.Background()
	repos, err := OpenStorage(ctx, cfg.Storage)
	require.NoError(t, err)
	proc, err := files.NewProcessor(files.Config{UploadDir: cfg.Files.UploadDir, OutputDir: cfg.Files.OutputDir}, zerolog.Nop())
	require.NoError(t, err)
	collab := &Collaborators{
		LLM:      llm.NewClient(cannedProvider{reply: "a short summary"}, llm.Config{}, zerolog.Nop()),
		Searcher: noResults{},
		Files:    proc,
	}
	a, err := New(ctx, cfg, repos, collab, zerolog.Nop())
	require.NoError(t, err)
	return a
}

func getJSON(t *testing.T, h http.Handler, path string) map[string]any {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestDispatchIsRecordedAndMeasured(t *testing.T) {
	a := newApp(t, testConfig(t, t.TempDir()))
	defer a.Close()
	h := a.Handler()

	status := getJSON(t, h, "/v1/status")
	assert.Equal(t, float64(6), status["total_executors"])
	assert.Equal(t, "healthy", status["system_health"])

	req := httptest.NewRequest(http.MethodPost, "/v1/dispatch/summarization",
		strings.NewReader(`{"user_id":7,"payload":{"content":"Go is a statically typed language."}}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, "a short summary", result["summary"])

	tasks := getJSON(t, h, "/v1/users/7/tasks")
	require.Len(t, tasks["tasks"], 1)
	first := tasks["tasks"].([]any)[0].(map[string]any)
	assert.Equal(t, "summarization-1", first["executorId"])
	assert.Equal(t, "COMPLETED", first["status"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `agenthub_dispatch_total{status="success",type="summarization"} 1`)
}

func TestInactiveStatusSurvivesRestart(t *testing.T) {
	cfg := testConfig(t, t.TempDir())

	first := newApp(t, cfg)
	_, err := first.Executors.Deactivate(context.Background(), "web-search-1")
	require.NoError(t, err)
	first.Close()

	second := newApp(t, cfg)
	defer second.Close()
	snap, err := second.Executors.Get("web-search-1")
	require.NoError(t, err)
	assert.Equal(t, executor.StatusInactive, snap.Status)

	result := second.Dispatcher.Execute(context.Background(), "web-search", executor.Payload{"query": "go"}, 1)
	assert.False(t, result.OK())
}

func TestOpenStorageRejectsUnreachablePostgres(t *testing.T) {
	_, err := OpenStorage(context.Background(), config.StorageConfig{
		Driver:      config.DriverPostgres,
		DatabaseURL: "postgres://nobody@127.0.0.1:1/none?connect_timeout=1",
	})
	assert.Error(t, err)
}
