package cmd

import (
	"fmt"
	"log/slog"

	"github.com/dukex/migromat/pkg/registry"
)

// NewRegistry builds the handler registry: plugins from pluginsPath (when set) ahead of the
// built-in handlers.
func NewRegistry(log *slog.Logger, pluginsPath string) (*registry.Registry, error) {
	reg := registry.NewRegistry(log.With("module", "registry"))

	if pluginsPath != "" {
		if err := reg.LoadHandlerPlugins(pluginsPath); err != nil {
			return nil, fmt.Errorf("failed to load handler plugins: %w", err)
		}
	}

	reg.RegisterDefaultHandlers()

	return reg, nil
}
