package converters

import (
	"errors"
	"fmt"

	"github.com/dukex/migromat/pkg/models"
)

var (
	// ErrConversion is matched by every *ConversionError.
	ErrConversion = errors.New("conversion failed")

	// ErrUnsupportedTarget indicates a target platform without a converter.
	ErrUnsupportedTarget = errors.New("unsupported target platform")

	// ErrInvalidWorkflow indicates a canonical workflow that cannot be converted.
	ErrInvalidWorkflow = errors.New("invalid canonical workflow")
)

// ConversionError wraps a mapping or assembly failure with the conversion it belongs to.
type ConversionError struct {
	Target   models.Platform
	Workflow string
	StepID   string
	Err      error
}

func (e *ConversionError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("convert workflow %q to %s failed at step %s: %v", e.Workflow, e.Target, e.StepID, e.Err)
	}

	return fmt.Sprintf("convert workflow %q to %s failed: %v", e.Workflow, e.Target, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion || errors.Is(e.Err, target)
}

// IsConversionError checks if an error comes from a converter.
func IsConversionError(err error) bool {
	return errors.Is(err, ErrConversion)
}
