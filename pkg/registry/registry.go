// Package registry resolves canonical steps to step handlers.
package registry

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"plugin"
	"sync"

	"github.com/dukex/migromat/pkg/handlers"
	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/protocol"
)

// Registry keeps handler factories in dispatch order. Custom factories are consulted before the
// defaults and the generic factory always comes last.
type Registry struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	custom   []protocol.HandlerFactory
	defaults []protocol.HandlerFactory
	fallback protocol.HandlerFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:   log,
		fallback: handlers.NewGenericFactory(),
	}
}

// RegisterHandler adds a factory ahead of the built-in ones. Later registrations come after earlier ones.
func (r *Registry) RegisterHandler(factory protocol.HandlerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.custom = append(r.custom, factory)
}

// RegisterDefaultHandlers installs the built-in dispatch order: http/webhook, AI, email, database.
func (r *Registry) RegisterDefaultHandlers() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.defaults = []protocol.HandlerFactory{
		handlers.NewHTTPFactory(),
		handlers.NewAIFactory(),
		handlers.NewEmailFactory(),
		handlers.NewDatabaseFactory(),
	}
}

// Resolve picks the first factory matching the step kind and builds a handler from the step parameters.
//
//nolint:ireturn
func (r *Registry) Resolve(step *models.CanonicalStep) (protocol.StepHandler, string, error) {
	factory := r.factoryFor(step.Kind)

	handler, err := factory.Create(step.Parameters)
	if err != nil {
		return nil, factory.ID(), fmt.Errorf("create %s handler for step %s: %w", factory.ID(), step.ID, err)
	}

	return handler, factory.ID(), nil
}

//nolint:ireturn
func (r *Registry) factoryFor(stepKind string) protocol.HandlerFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, group := range [][]protocol.HandlerFactory{r.custom, r.defaults} {
		for _, factory := range group {
			if factory.Matches(stepKind) {
				return factory
			}
		}
	}

	return r.fallback
}

// IDs lists the registered factories in dispatch order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.custom)+len(r.defaults)+1)
	for _, factory := range append(append([]protocol.HandlerFactory{}, r.custom...), r.defaults...) {
		ids = append(ids, factory.ID())
	}

	return append(ids, r.fallback.ID())
}

// LoadHandlerPlugins opens every .so file under pluginsPath/handlers and registers its exported
// Handler symbol, which must implement protocol.HandlerFactory.
func (r *Registry) LoadHandlerPlugins(pluginsPath string) error {
	rootPath := filepath.Join(pluginsPath, "handlers")

	paths, err := fs.Glob(os.DirFS(rootPath), "*.so")
	if err != nil {
		return err
	}

	logger := r.logger.With(slog.String("path", rootPath))
	logger.Info("Loading handler plugins", "count", len(paths))

	for _, p := range paths {
		plg, err := plugin.Open(filepath.Join(rootPath, p))
		if err != nil {
			return fmt.Errorf("open plugin %s: %w", p, err)
		}

		symbol, err := plg.Lookup("Handler")
		if err != nil {
			return fmt.Errorf("lookup Handler in %s: %w", p, err)
		}

		factory, ok := symbol.(protocol.HandlerFactory)
		if !ok {
			return fmt.Errorf("plugin %s: Handler does not implement HandlerFactory", p)
		}

		r.RegisterHandler(factory)
		logger.Info("Loaded handler plugin", slog.String("plugin", p), slog.String("id", factory.ID()))
	}

	return nil
}
