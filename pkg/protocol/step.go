// Package protocol defines the contracts between the execution orchestrator and step handlers.
package protocol

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukex/migromat/pkg/models"
)

// StepInput is everything a handler sees when it runs one step.
type StepInput struct {
	Step        *models.CanonicalStep
	Data        map[string]any
	Credentials map[string]string
	// Client is the HTTP session of the running execution. It must not outlive the call.
	Client *http.Client
}

// StepHandler executes one canonical step and returns the payload handed to the next step.
type StepHandler interface {
	Execute(ctx context.Context, input StepInput, logger *slog.Logger) (map[string]any, error)
}

// HandlerFactory builds handlers for the step kinds it matches.
type HandlerFactory interface {
	ID() string
	Matches(stepKind string) bool
	Create(config map[string]any) (StepHandler, error)
}
