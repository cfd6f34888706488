// Package services provides the use cases behind every transport: upload, conversion, script
// export, executions and schedules.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/migromat/pkg/converters"
	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/parsers"
	"github.com/dukex/migromat/pkg/persistence"
	"github.com/dukex/migromat/pkg/scriptgen"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrEmptyDocument  = errors.New("uploaded document is empty")

	ErrWorkflowNotFound  = persistence.ErrWorkflowNotFound
	ErrExecutionNotFound = persistence.ErrExecutionNotFound
	ErrScheduleNotFound  = persistence.ErrScheduleNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is caused by the caller's input and should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrEmptyDocument) ||
		errors.Is(err, converters.ErrUnsupportedTarget) ||
		errors.Is(err, scriptgen.ErrUnsupportedLanguage) ||
		errors.Is(err, models.ErrInvalidSchedule) ||
		parsers.IsInvalidDocument(err) ||
		parsers.IsPlatformDetectionError(err)
}

// IsNotFound checks if an error reports a missing workflow, execution or schedule.
func IsNotFound(err error) bool {
	return persistence.IsNotFound(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
