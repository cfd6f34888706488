package scriptgen

import (
	"errors"
	"fmt"
)

var (
	ErrNoSteps             = errors.New("no steps found")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidScript       = errors.New("generated script is invalid")
)

// GenerationError reports a script that could not be produced. The generator still returns
// placeholder text alongside it.
type GenerationError struct {
	Workflow string
	Language Language
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s script for workflow %q: %v", e.Language, e.Workflow, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError checks if an error comes from the script generator.
func IsGenerationError(err error) bool {
	var generationErr *GenerationError

	return errors.As(err, &generationErr)
}
