package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/migromat/pkg/persistence"
	"github.com/dukex/migromat/pkg/persistence/sqlite"
	"github.com/dukex/migromat/pkg/testutil"
)

func newStore(t *testing.T, dsn string) *sqlite.Persistence {
	t.Helper()

	store, err := sqlite.NewPersistence(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})

	return store
}

func TestPersistence_Suite(t *testing.T) {
	t.Parallel()

	testutil.RunPersistenceSuite(t, func(t *testing.T) persistence.Persistence {
		return newStore(t, ":memory:")
	})
}

func TestPersistence_ReopenKeepsData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "migromat.db")

	first, err := sqlite.NewPersistence(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), dsn)
	require.NoError(t, err)

	workflow := testutil.NewStoredWorkflow()
	require.NoError(t, first.SaveWorkflow(ctx, workflow))
	require.NoError(t, first.Close(ctx))

	second := newStore(t, dsn)

	loaded, err := second.WorkflowByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Name, loaded.Name)
}
