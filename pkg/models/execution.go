package models

import (
	"errors"
	"maps"
	"slices"
	"time"
)

// ExecutionStatus is the state of an execution. The only transitions are
// running -> completed and running -> failed.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
)

// LogLevel is the level of an execution log entry.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelSuccess LogLevel = "success"
	LogLevelWarn    LogLevel = "warn"
	LogLevelError   LogLevel = "error"
)

// ErrExecutionFinished is returned when a terminal execution is mutated.
var ErrExecutionFinished = errors.New("execution already finished")

// LogEntry is one line of an execution log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
}

// ExecutionRecord tracks one execution attempt of a workflow.
type ExecutionRecord struct {
	ID          string          `json:"id"`
	WorkflowID  string          `json:"workflow_id"`
	Status      ExecutionStatus `json:"status"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at"`
	Result      map[string]any  `json:"result"`
	Error       string          `json:"error,omitempty"`
	Logs        []LogEntry      `json:"logs"`
	Duration    *float64        `json:"duration"`
}

// NewExecutionRecord creates a running execution.
func NewExecutionRecord(id, workflowID string, startedAt time.Time) *ExecutionRecord {
	return &ExecutionRecord{
		ID:         id,
		WorkflowID: workflowID,
		Status:     ExecutionStatusRunning,
		StartedAt:  startedAt,
		Logs:       make([]LogEntry, 0),
	}
}

// IsTerminal reports whether the execution reached completed or failed.
func (r *ExecutionRecord) IsTerminal() bool {
	return r.Status == ExecutionStatusCompleted || r.Status == ExecutionStatusFailed
}

// AppendLog adds an entry to the log. Entries are never removed or reordered.
func (r *ExecutionRecord) AppendLog(entry LogEntry) error {
	if r.IsTerminal() {
		return ErrExecutionFinished
	}

	r.Logs = append(r.Logs, entry)

	return nil
}

// Complete moves a running execution to completed with the given result.
func (r *ExecutionRecord) Complete(result map[string]any, at time.Time) error {
	if r.IsTerminal() {
		return ErrExecutionFinished
	}

	r.Status = ExecutionStatusCompleted
	r.Result = result
	r.finish(at)

	return nil
}

// Fail moves a running execution to failed. Result stays unset.
func (r *ExecutionRecord) Fail(cause error, at time.Time) error {
	if r.IsTerminal() {
		return ErrExecutionFinished
	}

	r.Status = ExecutionStatusFailed
	if cause != nil {
		r.Error = cause.Error()
	}

	r.finish(at)

	return nil
}

func (r *ExecutionRecord) finish(at time.Time) {
	r.CompletedAt = &at
	seconds := at.Sub(r.StartedAt).Seconds()
	r.Duration = &seconds
}

// Snapshot returns a copy safe to hand to readers while the owner keeps running.
func (r *ExecutionRecord) Snapshot() *ExecutionRecord {
	snapshot := *r
	snapshot.Logs = slices.Clone(r.Logs)
	snapshot.Result = maps.Clone(r.Result)

	if r.CompletedAt != nil {
		completedAt := *r.CompletedAt
		snapshot.CompletedAt = &completedAt
	}

	if r.Duration != nil {
		duration := *r.Duration
		snapshot.Duration = &duration
	}

	return &snapshot
}
