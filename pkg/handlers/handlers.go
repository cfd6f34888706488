// Package handlers contains the built-in step handlers. They are placeholders that merge a success
// marker into the payload; real integrations replace them through the registry.
package handlers

import (
	"context"
	"log/slog"
	"maps"

	"github.com/dukex/migromat/pkg/kind"
	"github.com/dukex/migromat/pkg/protocol"
)

const success = "success"

func merge(data map[string]any, key string) map[string]any {
	result := make(map[string]any, len(data)+1)
	maps.Copy(result, data)
	result[key] = success

	return result
}

// markerHandler returns the input payload plus a fixed result key.
type markerHandler struct {
	key string
}

func (h *markerHandler) Execute(_ context.Context, input protocol.StepInput, logger *slog.Logger) (map[string]any, error) {
	logger.Debug("Executing placeholder step", "step", input.Step.Name, "result_key", h.key)

	return merge(input.Data, h.key), nil
}

// MarkerFactory builds placeholder handlers for the kinds its matcher accepts.
type MarkerFactory struct {
	id      string
	key     string
	matcher kind.Matcher
}

func (f *MarkerFactory) ID() string {
	return f.id
}

func (f *MarkerFactory) Matches(stepKind string) bool {
	return f.matcher.Match(stepKind)
}

func (f *MarkerFactory) Create(_ map[string]any) (protocol.StepHandler, error) {
	return &markerHandler{key: f.key}, nil
}

func NewAIFactory() *MarkerFactory {
	return &MarkerFactory{id: "ai", key: "ai_result", matcher: kind.AI}
}

func NewEmailFactory() *MarkerFactory {
	return &MarkerFactory{id: "email", key: "email_result", matcher: kind.Email}
}

func NewDatabaseFactory() *MarkerFactory {
	return &MarkerFactory{id: "database", key: "db_result", matcher: kind.Database}
}
