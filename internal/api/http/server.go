package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agent-hub/agent-hub/internal/application/chat"
	"github.com/agent-hub/agent-hub/internal/application/registry"
	appTask "github.com/agent-hub/agent-hub/internal/application/task"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
	"github.com/agent-hub/agent-hub/internal/domain/search"
	"github.com/agent-hub/agent-hub/internal/domain/task"
	"github.com/agent-hub/agent-hub/internal/domain/upload"
	"github.com/agent-hub/agent-hub/internal/infrastructure/sse"
)

type Dispatcher interface {
	Execute(ctx context.Context, executorType string, payload executor.Payload, userID int64) executor.Result
}

type Planner interface {
	PlanAndExecute(ctx context.Context, description string, userID int64) executor.Result
}

type ChatRouter interface {
	Handle(ctx context.Context, userID int64, text string) chat.Reply
}

type Uploader interface {
	SaveUpload(name string, r io.Reader) (string, int64, error)
}

type StatusSource interface {
	Status() registry.Status
}

type ExecutorService interface {
	Get(executorID string) (executor.Snapshot, error)
	List() []executor.Snapshot
	Activate(ctx context.Context, executorID string) (executor.Snapshot, error)
	Deactivate(ctx context.Context, executorID string) (executor.Snapshot, error)
}

type HistoryService interface {
	Get(ctx context.Context, taskID uuid.UUID) (*task.Record, error)
	ListTasks(ctx context.Context, userID int64, limit, offset int) ([]*task.Record, error)
	ListSearches(ctx context.Context, userID int64, limit, offset int) ([]*search.Record, error)
	RecordUpload(ctx context.Context, u *upload.Upload) error
	Stats(ctx context.Context) (*appTask.Stats, error)
}

// Services are the application entry points the handlers call.
type Services struct {
	Dispatcher Dispatcher
	Planner    Planner
	Chat       ChatRouter
	Uploads    Uploader
	Status     StatusSource
	Executors  ExecutorService
	History    HistoryService
	Events     *sse.Hub
}

// Options tune the router.
type Options struct {
	// AdminKeyHash is the bcrypt hash of the admin bearer token. Admin
	// routes reject every request when it is empty.
	AdminKeyHash   string
	RequestTimeout time.Duration
	MaxUploadSize  int64
	Metrics        http.Handler
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    Services
	opts   Options
	logger zerolog.Logger
}

func NewServer(svc Services, opts Options, logger zerolog.Logger) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Server{
		svc:    svc,
		opts:   opts,
		logger: logger.With().Str("service", "http").Logger(),
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		// streams outlive the request timeout
		r.Get("/events", s.sseEndpoint)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.opts.RequestTimeout))

			r.Post("/dispatch/{executorType}", s.dispatch)
			r.Post("/plan", s.plan)
			r.Post("/messages", s.message)
			r.Post("/files", s.uploadFile)

			r.Get("/status", s.status)
			r.Route("/executors", func(r chi.Router) {
				r.Get("/", s.listExecutors)
				r.Get("/{executorId}", s.getExecutor)
			})
			r.Get("/tasks/{taskId}", s.getTask)
			r.Route("/users/{userId}", func(r chi.Router) {
				r.Get("/tasks", s.listUserTasks)
				r.Get("/searches", s.listUserSearches)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/executors/{executorId}/activate", s.activateExecutor)
				r.Post("/executors/{executorId}/deactivate", s.deactivateExecutor)
				r.Get("/stats", s.adminStats)
			})
		})
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, key))
}

func parseUserIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
