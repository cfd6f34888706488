package cmd_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/migromat/pkg/cmd"
	"github.com/dukex/migromat/pkg/persistence/file"
	"github.com/dukex/migromat/pkg/persistence/memory"
	"github.com/dukex/migromat/pkg/persistence/sqlite"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPersistenceProvider(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                             "memory",
		"memory://":                    "memory",
		"./data":                       "file",
		"file:///var/lib/migromat":     "file",
		"sqlite://./migromat.db":       "sqlite",
		"postgres://u:p@db/migromat":   "postgresql",
		"postgresql://u:p@db/migromat": "postgresql",
		"redis://localhost:6379/0":     "redis",
		"rediss://cache:6380/1":        "redis",
		"mongodb://localhost":          "unsupported",
	}

	for url, want := range tests {
		assert.Equal(t, want, cmd.PersistenceProvider(url), url)
	}
}

func TestNewPersistence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store, err := cmd.NewPersistence(ctx, discard(), "memory://")
	require.NoError(t, err)
	assert.IsType(t, &memory.Persistence{}, store)

	store, err = cmd.NewPersistence(ctx, discard(), "file://"+t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, store)

	store, err = cmd.NewPersistence(ctx, discard(), "sqlite://"+filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Persistence{}, store)
	require.NoError(t, store.Close(ctx))

	_, err = cmd.NewPersistence(ctx, discard(), "mongodb://localhost")
	require.Error(t, err)
}

func TestNewEventBus(t *testing.T) {
	t.Parallel()

	bus, err := cmd.NewEventBus("", nil, discard())
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	_, err = cmd.NewEventBus("kafka", nil, discard())
	require.Error(t, err)

	_, err = cmd.NewEventBus("nats", nil, discard())
	require.Error(t, err)
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	reg, err := cmd.NewRegistry(discard(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"http", "ai", "email", "database", "generic"}, reg.IDs())

	reg, err = cmd.NewRegistry(discard(), t.TempDir())
	require.NoError(t, err)
	assert.Len(t, reg.IDs(), 5)
}
