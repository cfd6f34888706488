package parsers

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUnknownPlatform indicates a document matched none of the known platform signatures.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrInvalidDocument indicates the raw bytes could not be decoded into a document.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrMalformedDocument indicates a recognized document whose fields have unexpected shapes.
	ErrMalformedDocument = errors.New("malformed document")
)

// PlatformDetectionError reports a document whose shape matches no known platform.
type PlatformDetectionError struct {
	Keys []string
}

func (e *PlatformDetectionError) Error() string {
	if len(e.Keys) == 0 {
		return "unknown platform: document is empty"
	}

	return fmt.Sprintf(
		"unknown platform: expected nodes+connections, trigger+steps or flow/scenario, got keys [%s]",
		strings.Join(e.Keys, ", "),
	)
}

func (e *PlatformDetectionError) Is(target error) bool {
	return target == ErrUnknownPlatform
}

func newPlatformDetectionError(doc map[string]any) *PlatformDetectionError {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	return &PlatformDetectionError{Keys: keys}
}

// IsPlatformDetectionError checks if an error comes from platform detection.
func IsPlatformDetectionError(err error) bool {
	return errors.Is(err, ErrUnknownPlatform)
}

// IsInvalidDocument checks if an error indicates undecodable or malformed input.
func IsInvalidDocument(err error) bool {
	return errors.Is(err, ErrInvalidDocument) || errors.Is(err, ErrMalformedDocument)
}
