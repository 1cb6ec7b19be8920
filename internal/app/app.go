// Package app wires configuration, storage, collaborators and executors
// into a running hub.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpapi "github.com/agent-hub/agent-hub/internal/api/http"
	"github.com/agent-hub/agent-hub/internal/application/agent"
	"github.com/agent-hub/agent-hub/internal/application/chat"
	"github.com/agent-hub/agent-hub/internal/application/dispatch"
	appExecutor "github.com/agent-hub/agent-hub/internal/application/executor"
	"github.com/agent-hub/agent-hub/internal/application/planner"
	"github.com/agent-hub/agent-hub/internal/application/registry"
	appTask "github.com/agent-hub/agent-hub/internal/application/task"
	"github.com/agent-hub/agent-hub/internal/config"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/search"
	"github.com/agent-hub/agent-hub/internal/domain/task"
	"github.com/agent-hub/agent-hub/internal/domain/upload"
	"github.com/agent-hub/agent-hub/internal/infrastructure/files"
	"github.com/agent-hub/agent-hub/internal/infrastructure/llm"
	"github.com/agent-hub/agent-hub/internal/infrastructure/postgres"
	"github.com/agent-hub/agent-hub/internal/infrastructure/sqlite"
	"github.com/agent-hub/agent-hub/internal/infrastructure/sse"
	"github.com/agent-hub/agent-hub/internal/infrastructure/websearch"
)

// Repositories groups the persistence ports of one storage backend.
type Repositories struct {
	Executors executor.Repository
	Tasks     task.Repository
	Searches  search.Repository
	Uploads   upload.Repository
	Close     func()
}

// OpenStorage connects the configured backend and applies its schema.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (*Repositories, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if err := postgres.RunMigrations(ctx, pool, postgres.Migrations()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		return &Repositories{
			Executors: postgres.NewExecutorRepository(pool),
			Tasks:     postgres.NewTaskRepository(pool),
			Searches:  postgres.NewSearchRepository(pool),
			Uploads:   postgres.NewUploadRepository(pool),
			Close:     pool.Close,
		}, nil
	default:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Executors: store.Executors(),
			Tasks:     store.Tasks(),
			Searches:  store.Searches(),
			Uploads:   store.Uploads(),
			Close:     func() { _ = store.Close() },
		}, nil
	}
}

// Collaborators are the external services executors depend on.
type Collaborators struct {
	LLM      *llm.Client
	Searcher agent.Searcher
	Files    *files.Processor
}

// NewCollaborators builds the LLM client, web searcher and file processor
// from configuration.
func NewCollaborators(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Collaborators, error) {
	provider, err := llm.NewProvider(ctx, cfg.LLM.Provider, cfg.LLM.APIKey, cfg.LLM.Model)
	if err != nil {
		return nil, err
	}
	proc, err := files.NewProcessor(files.Config{
		UploadDir: cfg.Files.UploadDir,
		OutputDir: cfg.Files.OutputDir,
		MaxSize:   cfg.Files.MaxSize,
	}, logger)
	if err != nil {
		return nil, err
	}
	engine := websearch.NewDuckDuckGo(cfg.Search.BaseURL, cfg.Search.Timeout)
	return &Collaborators{
		LLM: llm.NewClient(provider, llm.Config{
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		}, logger),
		Searcher: websearch.NewSearcher(engine, websearch.Config{
			MaxResults: cfg.Search.MaxResults,
			CacheSize:  cfg.Search.CacheSize,
			CacheTTL:   cfg.Search.CacheTTL,
		}, logger),
		Files: proc,
	}, nil
}

// App is a fully wired hub.
type App struct {
	Registry   *registry.Registry
	Dispatcher *dispatch.Dispatcher
	Planner    *planner.Bridge
	Chat       *chat.Router
	Executors  *appExecutor.Service
	History    *appTask.Service
	Events     *sse.Hub
	Metrics    *prometheus.Registry

	cfg    *config.Config
	collab *Collaborators
	repos  *Repositories
	logger zerolog.Logger
}

// New builds the executors, registers them and syncs the persisted
// catalog.
func New(ctx context.Context, cfg *config.Config, repos *Repositories, collab *Collaborators, logger zerolog.Logger) (*App, error) {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	reg := registry.New()
	hub := sse.NewHub()
	metrics := dispatch.MustNewMetrics(promReg, func() int { return len(reg.ListBusy()) })
	dispatcher := dispatch.New(reg, repos.Tasks, hub, metrics, logger)
	bridge := planner.New(reg, collab.LLM, dispatcher, logger)

	agents, err := agent.Build(cfg.Executors, agent.Deps{
		LLM:         collab.LLM,
		Searcher:    collab.Searcher,
		Files:       collab.Files,
		SearchLog:   repos.Searches,
		Planner:     bridge,
		Coordinator: dispatcher,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build executors: %w", err)
	}
	for _, a := range agents {
		if err := reg.Register(a); err != nil {
			return nil, err
		}
	}

	executorSvc := appExecutor.NewService(reg, repos.Executors, logger)
	if err := executorSvc.Sync(ctx); err != nil {
		return nil, err
	}

	return &App{
		Registry:   reg,
		Dispatcher: dispatcher,
		Planner:    bridge,
		Chat:       chat.NewRouter(dispatcher, collab.LLM, logger),
		Executors:  executorSvc,
		History:    appTask.NewService(repos.Tasks, repos.Searches, repos.Uploads, logger),
		Events:     hub,
		Metrics:    promReg,
		cfg:        cfg,
		collab:     collab,
		repos:      repos,
		logger:     logger,
	}, nil
}

// Handler is the HTTP surface of the hub.
func (a *App) Handler() http.Handler {
	srv := httpapi.NewServer(httpapi.Services{
		Dispatcher: a.Dispatcher,
		Planner:    a.Planner,
		Chat:       a.Chat,
		Uploads:    a.collab.Files,
		Status:     a.Registry,
		Executors:  a.Executors,
		History:    a.History,
		Events:     a.Events,
	}, httpapi.Options{
		AdminKeyHash:   a.cfg.Admin.APIKeyHash,
		RequestTimeout: a.cfg.Server.RequestTimeout,
		MaxUploadSize:  a.cfg.Files.MaxSize,
		Metrics:        promhttp.HandlerFor(a.Metrics, promhttp.HandlerOpts{}),
	}, a.logger)
	return srv.Router()
}

// Close disconnects event streams and releases storage.
func (a *App) Close() {
	a.Events.Stop()
	if a.repos.Close != nil {
		a.repos.Close()
	}
}
