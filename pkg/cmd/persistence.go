// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/migromat/pkg/persistence"
	"github.com/dukex/migromat/pkg/persistence/file"
	"github.com/dukex/migromat/pkg/persistence/memory"
	"github.com/dukex/migromat/pkg/persistence/postgresql"
	redisstore "github.com/dukex/migromat/pkg/persistence/redis"
	"github.com/dukex/migromat/pkg/persistence/sqlite"
)

// PersistenceProvider extracts the store kind from a database URL. URLs without a known scheme
// are file paths.
func PersistenceProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		if databaseURL == "" || databaseURL == "memory" {
			return "memory"
		}

		return "file"
	}

	switch scheme {
	case "memory", "file", "sqlite", "redis":
		return scheme
	case "rediss":
		return "redis"
	case "postgres", "postgresql":
		return "postgresql"
	default:
		return "unsupported"
	}
}

// NewPersistence opens the store selected by the URL scheme of databaseURL.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	logger = logger.With("module", "persistence")

	switch provider := PersistenceProvider(databaseURL); provider {
	case "memory":
		return memory.NewPersistence(), nil
	case "file":
		return file.NewPersistence(databaseURL), nil
	case "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "sqlite":
		return sqlite.NewPersistence(ctx, logger, databaseURL)
	case "redis":
		return redisstore.NewPersistence(ctx, logger, databaseURL)
	default:
		return nil, fmt.Errorf("unsupported persistence url %q", databaseURL)
	}
}
