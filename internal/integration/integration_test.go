//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/agent-hub/agent-hub/internal/app"
	"github.com/agent-hub/agent-hub/internal/application/agent"
	"github.com/agent-hub/agent-hub/internal/config"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/search"
	"github.com/agent-hub/agent-hub/internal/infrastructure/files"
	"github.com/agent-hub/agent-hub/internal/infrastructure/llm"
	"github.com/agent-hub/agent-hub/internal/infrastructure/postgres"
)

const testAdminKey = "integration-admin-key"

type cannedProvider struct{}

func (cannedProvider) Complete(_ context.Context, req llm.Request) (string, error) {
	if strings.Contains(req.Prompt, "search results") {
		return "digest of the results", nil
	}
	return "canned reply", nil
}

type staticSearcher struct{}

func (staticSearcher) Search(_ context.Context, req search.Request) ([]search.Result, error) {
	return []search.Result{
		{Title: "Go", Link: "https://go.dev", Snippet: "The Go programming language", Source: "go.dev", SearchType: req.Mode},
		{Title: "Tour", Link: "https://go.dev/tour", Snippet: "A tour of Go", Source: "go.dev", SearchType: req.Mode},
	}, nil
}

func TestDispatchPersistsToPostgres(t *testing.T) {
	hub, pool := newTestHub(t)
	server := httptest.NewServer(hub.Handler())
	defer server.Close()

	resp := postJSON(t, server.URL+"/v1/dispatch/web-search", `{"user_id":11,"payload":{"query":"golang"}}`, "")
	if resp["status"] != "success" {
		t.Fatalf("expected success, got %v", resp)
	}
	resp = postJSON(t, server.URL+"/v1/dispatch/summarization", `{"user_id":11,"payload":{}}`, "")
	if resp["status"] != "error" {
		t.Fatalf("expected validation error, got %v", resp)
	}

	var tasks map[string]any
	getJSON(t, server.URL+"/v1/users/11/tasks", "", &tasks)
	if got := len(tasks["tasks"].([]any)); got != 2 {
		t.Fatalf("expected 2 tasks, got %d", got)
	}

	var searches map[string]any
	getJSON(t, server.URL+"/v1/users/11/searches", "", &searches)
	if got := len(searches["searches"].([]any)); got != 1 {
		t.Fatalf("expected 1 search record, got %d", got)
	}

	var stats map[string]any
	getJSON(t, server.URL+"/v1/admin/stats", testAdminKey, &stats)
	taskStats := stats["tasks"].(map[string]any)
	if taskStats["total"] != float64(2) || taskStats["completed"] != float64(1) || taskStats["failed"] != float64(1) {
		t.Fatalf("unexpected task stats: %v", taskStats)
	}

	var status string
	if err := pool.QueryRow(context.Background(), `SELECT status FROM tasks WHERE executor_id='summarization-1'`).Scan(&status); err != nil {
		t.Fatalf("query task: %v", err)
	}
	if status != "FAILED" {
		t.Fatalf("expected FAILED, got %s", status)
	}
}

func TestExecutorStatusIsRestored(t *testing.T) {
	hub, pool := newTestHub(t)
	server := httptest.NewServer(hub.Handler())
	defer server.Close()

	postJSON(t, server.URL+"/v1/admin/executors/data-analysis-1/deactivate", `{}`, testAdminKey)

	var stored string
	if err := pool.QueryRow(context.Background(), `SELECT status FROM executors WHERE executor_id='data-analysis-1'`).Scan(&stored); err != nil {
		t.Fatalf("query executor: %v", err)
	}
	if stored != string(executor.StatusInactive) {
		t.Fatalf("expected INACTIVE, got %s", stored)
	}

	restarted := buildHub(t, testConfig(t))
	defer restarted.Close()
	snap, err := restarted.Executors.Get("data-analysis-1")
	if err != nil {
		t.Fatalf("get executor: %v", err)
	}
	if snap.Status != executor.StatusInactive {
		t.Fatalf("expected restored INACTIVE status, got %s", snap.Status)
	}
}

func newTestHub(t *testing.T) (*app.App, *pgxpool.Pool) {
	t.Helper()
	cfg := testConfig(t)
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.Storage.DatabaseURL)
	if err != nil {
		t.Fatalf("db pool: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := postgres.RunMigrations(ctx, pool, postgres.Migrations()); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if err := resetDatabase(ctx, pool); err != nil {
		t.Fatalf("reset db: %v", err)
	}

	hub := buildHub(t, cfg)
	t.Cleanup(hub.Close)
	return hub, pool
}

func buildHub(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()
	ctx := context.Background()
	repos, err := app.OpenStorage(ctx, cfg.Storage)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	proc, err := files.NewProcessor(files.Config{UploadDir: cfg.Files.UploadDir, OutputDir: cfg.Files.OutputDir}, zerolog.Nop())
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	hub, err := app.New(ctx, cfg, repos, &app.Collaborators{
		LLM:      llm.NewClient(cannedProvider{}, llm.Config{}, zerolog.Nop()),
		Searcher: staticSearcher{},
		Files:    proc,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	return hub
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	dir := t.TempDir()
	return &config.Config{
		Server:    config.ServerConfig{RequestTimeout: 10 * time.Second},
		Storage:   config.StorageConfig{Driver: config.DriverPostgres, DatabaseURL: testDatabaseURL(t)},
		Files:     config.FilesConfig{UploadDir: dir + "/uploads", OutputDir: dir + "/outputs", MaxSize: files.DefaultMaxSize},
		Admin:     config.AdminConfig{APIKeyHash: string(hash)},
		Executors: agent.DefaultSpecs(),
	}
}

func postJSON(t *testing.T, url, body, token string) map[string]any {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return doJSON(t, req)
}

func getJSON(t *testing.T, url, token string, out *map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	*out = doJSON(t, req)
}

func doJSON(t *testing.T, req *http.Request) map[string]any {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func testDatabaseURL(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	t.Skip("TEST_DATABASE_URL not set; skipping integration tests")
	return ""
}

func resetDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		TRUNCATE TABLE
			tasks,
			search_history,
			uploads,
			executors
		RESTART IDENTITY CASCADE
	`)
	return err
}
