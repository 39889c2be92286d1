package analysis

import (
	"sync"
	"time"

	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

// RunStatus enum
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCanceled  RunStatus = "canceled"
)

// EntryStatus enum
type EntryStatus string

const (
	EntryPending   EntryStatus = "pending"
	EntrySucceeded EntryStatus = "succeeded"
	EntryFailed    EntryStatus = "failed"
	EntrySkipped   EntryStatus = "skipped"
)

// BulkEntry is the outcome slot for one resource in a bulk run. Each slot is
// written at most once.
type BulkEntry struct {
	ResourceID string                `json:"resource_id"`
	Resource   resources.ResourceRef `json:"resource,omitempty"`
	Status     EntryStatus           `json:"status"`
	Result     *Result               `json:"result,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// Progress counters for a bulk run.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// BulkRun tracks a batch invocation of one workflow across many resources.
// Entry slots are pre-allocated so concurrent workers never contend over
// slice growth; all mutation goes through the mutex.
type BulkRun struct {
	mu sync.Mutex

	runID      string
	workflowID string
	entries    []BulkEntry
	status     RunStatus
	startedAt  time.Time
	finishedAt time.Time
	completed  int
}

// BulkSnapshot is an immutable copy of a run's state, safe to marshal and
// hand to callers while workers keep writing.
type BulkSnapshot struct {
	RunID      string      `json:"run_id"`
	WorkflowID string      `json:"workflow_id"`
	Status     RunStatus   `json:"status"`
	Progress   Progress    `json:"progress"`
	Results    []BulkEntry `json:"results"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// NewBulkRun creates a run with one pending slot per resource id.
func NewBulkRun(runID, workflowID string, resourceIDs []string, startedAt time.Time) *BulkRun {
	entries := make([]BulkEntry, len(resourceIDs))
	for i, id := range resourceIDs {
		entries[i] = BulkEntry{ResourceID: id, Status: EntryPending}
	}
	return &BulkRun{
		runID:      runID,
		workflowID: workflowID,
		entries:    entries,
		status:     RunRunning,
		startedAt:  startedAt,
	}
}

// ID returns the run id.
func (r *BulkRun) ID() string { return r.runID }

// WorkflowID returns the workflow the run executes.
func (r *BulkRun) WorkflowID() string { return r.workflowID }

// Size returns the number of resource slots.
func (r *BulkRun) Size() int { return len(r.entries) }

// ResourceID returns the resource id of slot i.
func (r *BulkRun) ResourceID(i int) string { return r.entries[i].ResourceID }

// RecordSuccess writes a success outcome into slot i and advances progress.
func (r *BulkRun) RecordSuccess(i int, ref resources.ResourceRef, res *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[i].Status != EntryPending {
		return
	}
	r.entries[i].Resource = ref
	r.entries[i].Status = EntrySucceeded
	r.entries[i].Result = res
	r.completed++
}

// RecordFailure writes an error outcome into slot i and advances progress.
// A failed resource never aborts the run.
func (r *BulkRun) RecordFailure(i int, ref resources.ResourceRef, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[i].Status != EntryPending {
		return
	}
	r.entries[i].Resource = ref
	r.entries[i].Status = EntryFailed
	r.entries[i].Error = err.Error()
	r.completed++
}

// RecordSkipped marks a slot that was never dispatched because the run was
// canceled first.
func (r *BulkRun) RecordSkipped(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[i].Status != EntryPending {
		return
	}
	r.entries[i].Status = EntrySkipped
	r.entries[i].Error = "canceled before start"
	r.completed++
}

// Finish marks the run terminal.
func (r *BulkRun) Finish(status RunStatus, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	r.finishedAt = at
}

// Snapshot copies the current state. Progress is monotonically increasing
// across successive snapshots of the same run.
func (r *BulkRun) Snapshot() *BulkSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]BulkEntry, len(r.entries))
	copy(results, r.entries)
	snap := &BulkSnapshot{
		RunID:      r.runID,
		WorkflowID: r.workflowID,
		Status:     r.status,
		Progress:   Progress{Completed: r.completed, Total: len(r.entries)},
		Results:    results,
		StartedAt:  r.startedAt,
	}
	if !r.finishedAt.IsZero() {
		t := r.finishedAt
		snap.FinishedAt = &t
	}
	return snap
}
