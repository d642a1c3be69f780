package pipeline

import (
	"sync"
	"time"

	"tabclean/pkg/contracts/domain"
)

// RunStatus is the overall status of a cleaning run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState is the complete state of one cleaning run: the evolving
// table, the reports each step emitted, per-step states and artifacts
// steps want to hand to later consumers (fitted parameters, mostly).
type RunState struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`
	Error error                 `json:"error,omitempty"`

	table     *domain.Table
	reports   []*domain.Report
	artifacts map[string]any
}

// NewRunState creates a pending run state.
func NewRunState(id string) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		artifacts: make(map[string]any),
	}
}

// Start marks the run as running.
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// Complete marks the run as completed.
func (r *RunState) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCompleted
}

// Fail marks the run as failed.
func (r *RunState) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusFailed
	r.Error = err
}

// Cancel marks the run as cancelled.
func (r *RunState) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.EndTime = &now
	r.Status = RunStatusCancelled
}

// Table returns the current table.
func (r *RunState) Table() *domain.Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table
}

// SetTable replaces the current table.
func (r *RunState) SetTable(t *domain.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table = t
}

// AddReport appends a step's report.
func (r *RunState) AddReport(rep *domain.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

// Reports returns the reports collected so far, in step order.
func (r *RunState) Reports() []*domain.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.Report(nil), r.reports...)
}

// SetArtifact stores a value for later consumers of the run.
func (r *RunState) SetArtifact(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts[key] = value
}

// Artifact retrieves a stored value.
func (r *RunState) Artifact(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.artifacts[key]
	return v, ok
}

// Step returns the state of one step.
func (r *RunState) Step(id string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Steps[id]
}

// setStep records a step's state.
func (r *RunState) setStep(id string, s *StepState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Steps[id] = s
}

// Duration returns how long the run has run, or ran.
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.EndTime != nil {
		return r.EndTime.Sub(r.StartTime)
	}
	return time.Since(r.StartTime)
}

// HasFailures reports whether any step failed.
func (r *RunState) HasFailures() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.Steps {
		if s.CurrentStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}
