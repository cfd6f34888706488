package executor

import (
	"errors"
	"fmt"
)

var (
	// ErrStepFailed is matched by every *StepExecutionError.
	ErrStepFailed = errors.New("step execution failed")

	ErrNilWorkflow = errors.New("workflow is nil")
)

// StepExecutionError wraps the error of the step that aborted an execution.
type StepExecutionError struct {
	Index    int
	StepID   string
	StepName string
	Kind     string
	Err      error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %d (%s, %s) failed: %v", e.Index, e.StepName, e.Kind, e.Err)
}

func (e *StepExecutionError) Unwrap() error {
	return e.Err
}

func (e *StepExecutionError) Is(target error) bool {
	return target == ErrStepFailed
}

// IsStepExecutionError checks if an error aborted an execution at a step.
func IsStepExecutionError(err error) bool {
	return errors.Is(err, ErrStepFailed)
}
