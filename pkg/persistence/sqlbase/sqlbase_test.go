package sqlbase_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dukex/migromat/pkg/persistence/sqlbase"
)

func TestDialect_Rebind(t *testing.T) {
	t.Parallel()

	query := "SELECT payload FROM schedules WHERE active = ? AND next_due_at <= ?"

	assert.Equal(t, "SELECT payload FROM schedules WHERE active = $1 AND next_due_at <= $2", sqlbase.Postgres.Rebind(query))
	assert.Equal(t, query, sqlbase.SQLite.Rebind(query))
}

func TestDialect_SQLiteTimeIsSortable(t *testing.T) {
	t.Parallel()

	earlier := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	later := earlier.Add(500 * time.Millisecond)

	a, ok := sqlbase.SQLite.Time(earlier).(string)
	require.True(t, ok)
	b, ok := sqlbase.SQLite.Time(later.In(time.FixedZone("BRT", -3*3600))).(string)
	require.True(t, ok)

	assert.Less(t, a, b)
	assert.Len(t, b, len(a))
}

func TestMigrationManager_AppliesInOrderOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })

	migrations := map[int]string{
		3: "ALTER TABLE things ADD COLUMN note TEXT",
		1: "CREATE TABLE things (id TEXT PRIMARY KEY)",
		2: "ALTER TABLE things ADD COLUMN label TEXT",
	}

	manager := sqlbase.NewMigrationManager(slog.New(slog.NewTextHandler(io.Discard, nil)), db, sqlbase.SQLite, migrations)
	assert.Equal(t, 3, manager.LatestVersion())

	require.NoError(t, manager.RunMigrations(ctx))
	require.NoError(t, manager.RunMigrations(ctx))

	version, err := manager.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)

	_, err = db.ExecContext(ctx, "INSERT INTO things (id, label, note) VALUES ('a', 'b', 'c')")
	require.NoError(t, err)
}
