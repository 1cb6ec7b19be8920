package executor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Type represents executor type.
type Type string

const (
	TypeFileAnalysis   Type = "file-analysis"
	TypeWebSearch      Type = "web-search"
	TypeSummarization  Type = "summarization"
	TypeFileGeneration Type = "file-generation"
	TypeTaskManagement Type = "task-management"
	TypeDataAnalysis   Type = "data-analysis"
)

// Types lists every executor type in registration order.
var Types = []Type{
	TypeFileAnalysis,
	TypeWebSearch,
	TypeSummarization,
	TypeFileGeneration,
	TypeTaskManagement,
	TypeDataAnalysis,
}

// ParseType validates an executor type name.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown executor type: %s", s)
}

// Status represents executor status.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Executor holds the identity and lifecycle state of a task executor.
// Identity fields are immutable after construction; status, busy and
// last activity are safe for concurrent use.
type Executor struct {
	ExecutorID   string
	ExecutorType Type
	DisplayName  string
	Capabilities []string
	CreatedAt    time.Time

	busy         atomic.Bool
	mu           sync.RWMutex
	status       Status
	lastActivity time.Time
}

// New creates an active, idle executor.
func New(id string, typ Type, name string, capabilities []string) *Executor {
	now := time.Now().UTC()
	caps := make([]string, len(capabilities))
	copy(caps, capabilities)
	return &Executor{
		ExecutorID:   id,
		ExecutorType: typ,
		DisplayName:  name,
		Capabilities: caps,
		CreatedAt:    now,
		status:       StatusActive,
		lastActivity: now,
	}
}

// TryAcquire marks the executor busy if it is active and idle.
// Check and set happen as one compare-and-swap.
func (e *Executor) TryAcquire() bool {
	if !e.IsActive() {
		return false
	}
	if !e.busy.CompareAndSwap(false, true) {
		return false
	}
	e.Touch()
	return true
}

// Release clears the busy flag.
func (e *Executor) Release() {
	e.busy.Store(false)
}

func (e *Executor) IsBusy() bool {
	return e.busy.Load()
}

func (e *Executor) IsActive() bool {
	return e.Status() == StatusActive
}

func (e *Executor) IsAvailable() bool {
	return e.IsActive() && !e.IsBusy()
}

func (e *Executor) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

func (e *Executor) SetStatus(status Status) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = status
}

// Touch updates the last activity timestamp.
func (e *Executor) Touch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActivity = time.Now().UTC()
}

func (e *Executor) LastActivity() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastActivity
}

// Snapshot is a point-in-time view of an executor.
type Snapshot struct {
	ExecutorID   string    `json:"executorId"`
	ExecutorType Type      `json:"executorType"`
	DisplayName  string    `json:"displayName"`
	Capabilities []string  `json:"capabilityTags"`
	Status       Status    `json:"status"`
	Busy         bool      `json:"busy"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

func (e *Executor) Snapshot() Snapshot {
	e.mu.RLock()
	status, last := e.status, e.lastActivity
	e.mu.RUnlock()
	return Snapshot{
		ExecutorID:   e.ExecutorID,
		ExecutorType: e.ExecutorType,
		DisplayName:  e.DisplayName,
		Capabilities: e.Capabilities,
		Status:       status,
		Busy:         e.IsBusy(),
		CreatedAt:    e.CreatedAt,
		LastActivity: last,
	}
}

// Record is the persisted form of an executor.
type Record struct {
	ExecutorID   string    `json:"executorId"`
	ExecutorType Type      `json:"executorType"`
	DisplayName  string    `json:"displayName"`
	Capabilities []string  `json:"capabilityTags,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToRecord converts the executor into its persisted form.
func (e *Executor) ToRecord() *Record {
	return &Record{
		ExecutorID:   e.ExecutorID,
		ExecutorType: e.ExecutorType,
		DisplayName:  e.DisplayName,
		Capabilities: e.Capabilities,
		Status:       e.Status(),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    time.Now().UTC(),
	}
}
