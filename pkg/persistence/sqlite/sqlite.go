// Package sqlite provides single-file persistence backed by the pure-Go modernc SQLite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/dukex/migromat/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for SQLite.
type Persistence struct {
	*sqlbase.Store
}

// NewPersistence opens (or creates) the database at dsn, which may carry a sqlite:// prefix.
// Use ":memory:" for an in-memory database.
func NewPersistence(ctx context.Context, logger *slog.Logger, dsn string) (*Persistence, error) {
	dbPath := strings.TrimPrefix(dsn, "sqlite://")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// A single connection serializes writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	err = sqlbase.NewMigrationManager(logger, db, sqlbase.SQLite, migrations()).RunMigrations(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{Store: sqlbase.NewStore(db, sqlbase.SQLite, logger)}, nil
}

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				platform TEXT NOT NULL,
				uploaded_at TEXT NOT NULL,
				payload TEXT NOT NULL
			);

			CREATE INDEX idx_workflows_uploaded_at ON workflows(uploaded_at);

			CREATE TABLE executions (
				id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL,
				status TEXT NOT NULL,
				started_at TEXT NOT NULL,
				payload TEXT NOT NULL
			);

			CREATE INDEX idx_executions_workflow_id ON executions(workflow_id, started_at);

			CREATE TABLE schedules (
				id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL,
				active BOOLEAN NOT NULL DEFAULT 1,
				next_due_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				payload TEXT NOT NULL
			);

			CREATE INDEX idx_schedules_due ON schedules(active, next_due_at);
		`,
	}
}
