package handlers

import (
	"context"
	"log/slog"

	"github.com/dukex/migromat/pkg/protocol"
)

// GenericFactory matches every kind and is used when no other factory does.
type GenericFactory struct{}

func NewGenericFactory() *GenericFactory {
	return &GenericFactory{}
}

func (*GenericFactory) ID() string {
	return "generic"
}

func (*GenericFactory) Matches(string) bool {
	return true
}

func (*GenericFactory) Create(map[string]any) (protocol.StepHandler, error) {
	return &GenericHandler{}, nil
}

// GenericHandler marks the step as done under "<step name>_result".
type GenericHandler struct{}

func (*GenericHandler) Execute(_ context.Context, input protocol.StepInput, logger *slog.Logger) (map[string]any, error) {
	logger.Debug("Executing generic step", "step", input.Step.Name)

	return merge(input.Data, input.Step.Name+"_result"), nil
}
