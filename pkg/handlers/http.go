package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dukex/migromat/pkg/kind"
	"github.com/dukex/migromat/pkg/protocol"
)

// HTTPFactory builds handlers for http and webhook steps.
type HTTPFactory struct{}

func NewHTTPFactory() *HTTPFactory {
	return &HTTPFactory{}
}

func (*HTTPFactory) ID() string {
	return "http"
}

func (*HTTPFactory) Matches(stepKind string) bool {
	return kind.HTTP.Match(stepKind)
}

func (*HTTPFactory) Create(config map[string]any) (protocol.StepHandler, error) {
	method, _ := config["method"].(string)
	if method == "" {
		method = "GET"
	}

	url, _ := config["url"].(string)

	return &HTTPHandler{Method: strings.ToUpper(method), URL: url}, nil
}

// HTTPHandler describes the request a step would send. It does not perform it.
type HTTPHandler struct {
	Method string
	URL    string
}

func (h *HTTPHandler) Execute(_ context.Context, input protocol.StepInput, logger *slog.Logger) (map[string]any, error) {
	logger.Info("HTTP request", "method", h.Method, "url", h.URL, "step", input.Step.Name)

	return merge(input.Data, "http_result"), nil
}
