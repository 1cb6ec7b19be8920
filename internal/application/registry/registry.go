package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/agent-hub/agent-hub/internal/application/agent"
	"github.com/agent-hub/agent-hub/internal/domain/executor"
)

var (
	ErrDuplicateID = errors.New("duplicate executor id")
	ErrNoExecutor  = errors.New("no executor of type")
	ErrAllBusy     = errors.New("all executors of type are busy")
)

const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
)

// Registry indexes executors by id and by type. Executors are only added,
// never removed.
type Registry struct {
	mu     sync.RWMutex
	order  []*agent.Agent
	byID   map[string]*agent.Agent
	byType map[executor.Type][]*agent.Agent
}

func New() *Registry {
	return &Registry{
		byID:   make(map[string]*agent.Agent),
		byType: make(map[executor.Type][]*agent.Agent),
	}
}

// Register adds a. Ids must be unique.
func (r *Registry) Register(a *agent.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[a.ExecutorID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, a.ExecutorID)
	}
	r.byID[a.ExecutorID] = a
	r.byType[a.ExecutorType] = append(r.byType[a.ExecutorType], a)
	r.order = append(r.order, a)
	return nil
}

func (r *Registry) Get(id string) (*agent.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	return a, ok
}

// List returns every executor in registration order.
func (r *Registry) List() []*agent.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*agent.Agent(nil), r.order...)
}

// ListByType returns the executors of typ in registration order.
func (r *Registry) ListByType(typ executor.Type) []*agent.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*agent.Agent{}, r.byType[typ]...)
}

func (r *Registry) ListActive() []*agent.Agent {
	return r.filter(func(a *agent.Agent) bool { return a.IsActive() })
}

func (r *Registry) ListBusy() []*agent.Agent {
	return r.filter(func(a *agent.Agent) bool { return a.IsBusy() })
}

func (r *Registry) filter(keep func(*agent.Agent) bool) []*agent.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*agent.Agent, 0, len(r.order))
	for _, a := range r.order {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// Acquire marks the first active, idle executor of typ busy and returns
// it. The caller must release it, normally through Agent.RunAcquired.
func (r *Registry) Acquire(typ executor.Type) (*agent.Agent, error) {
	bucket := r.ListByType(typ)
	if len(bucket) == 0 {
		return nil, ErrNoExecutor
	}
	for _, a := range bucket {
		if a.TryAcquire() {
			return a, nil
		}
	}
	return nil, ErrAllBusy
}

// TypeStatus counts the executors of one type.
type TypeStatus struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Busy   int `json:"busy"`
}

// Status is a point-in-time summary of the registry.
type Status struct {
	TotalExecutors  int                           `json:"total_executors"`
	ActiveExecutors int                           `json:"active_executors"`
	BusyExecutors   int                           `json:"busy_executors"`
	ExecutorTypes   map[executor.Type]*TypeStatus `json:"executor_types"`
	SystemHealth    string                        `json:"system_health"`
}

// Status summarizes the registry without changing it.
func (r *Registry) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Status{ExecutorTypes: make(map[executor.Type]*TypeStatus)}
	for _, a := range r.order {
		ts, ok := s.ExecutorTypes[a.ExecutorType]
		if !ok {
			ts = &TypeStatus{}
			s.ExecutorTypes[a.ExecutorType] = ts
		}
		s.TotalExecutors++
		ts.Total++
		if a.IsActive() {
			s.ActiveExecutors++
			ts.Active++
		}
		if a.IsBusy() {
			s.BusyExecutors++
			ts.Busy++
		}
	}
	s.SystemHealth = HealthDegraded
	if s.ActiveExecutors > 0 {
		s.SystemHealth = HealthHealthy
	}
	return s
}

// Snapshots returns the state of every executor in registration order.
func (r *Registry) Snapshots() []executor.Snapshot {
	agents := r.List()
	out := make([]executor.Snapshot, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.Snapshot())
	}
	return out
}
