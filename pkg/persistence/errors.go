// Package persistence provides the store abstraction for uploaded workflows, execution records and
// schedules, plus standardized error types shared by every implementation.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrExecutionNotFound indicates an execution record was not found by the given identifier.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrScheduleNotFound indicates a schedule was not found by the given identifier.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrInvalidRecord indicates a nil or identifier-less value was handed to a Save method.
	ErrInvalidRecord = errors.New("invalid record")
)

// RecordError wraps store errors with the operation and the record it concerned.
type RecordError struct {
	Op       string // Operation being performed (e.g., "WorkflowByID", "SaveExecution")
	Resource string // "workflow", "execution" or "schedule"
	ID       string
	Err      error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Resource, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for record errors.
func (e *RecordError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *RecordError {
	return &RecordError{Op: op, Resource: "workflow", ID: workflowID, Err: err}
}

// NewExecutionError creates a new execution error with context.
func NewExecutionError(op, executionID string, err error) *RecordError {
	return &RecordError{Op: op, Resource: "execution", ID: executionID, Err: err}
}

// NewScheduleError creates a new schedule error with context.
func NewScheduleError(op, scheduleID string, err error) *RecordError {
	return &RecordError{Op: op, Resource: "schedule", ID: scheduleID, Err: err}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsExecutionNotFound checks if an error indicates an execution was not found.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}

// IsScheduleNotFound checks if an error indicates a schedule was not found.
func IsScheduleNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound)
}

// IsNotFound reports whether err is any of the not-found errors.
func IsNotFound(err error) bool {
	return IsWorkflowNotFound(err) || IsExecutionNotFound(err) || IsScheduleNotFound(err)
}
