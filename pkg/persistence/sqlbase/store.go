package sqlbase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/persistence"
)

// Store implements persistence.Persistence on top of database/sql. Each record is kept as a JSON
// payload next to the columns used for lookups and ordering. The tables are created by the
// migrations of the calling package.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

var _ persistence.Persistence = (*Store)(nil)

func NewStore(db *sql.DB, dialect Dialect, logger *slog.Logger) *Store {
	return &Store{db: db, dialect: dialect, logger: logger}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) queryPayloads(ctx context.Context, query string, args ...any) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	payloads := make([][]byte, 0)

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan payload: %w", err)
		}

		payloads = append(payloads, payload)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return payloads, nil
}

func (s *Store) queryPayload(ctx context.Context, query string, args ...any) ([]byte, error) {
	var payload []byte

	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(query), args...).Scan(&payload)
	if err != nil {
		return nil, err
	}

	return payload, nil
}

func decodeAll[T any](payloads [][]byte) ([]*T, error) {
	records := make([]*T, 0, len(payloads))

	for _, payload := range payloads {
		var record T
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}

		records = append(records, &record)
	}

	return records, nil
}

func decodeOne[T any](payload []byte, err error, sentinel error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	var record T
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &record, nil
}

func affected(result sql.Result, err error, sentinel error) error {
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if rows == 0 {
		return sentinel
	}

	return nil
}

func (s *Store) Workflows(ctx context.Context) ([]*models.StoredWorkflow, error) {
	payloads, err := s.queryPayloads(ctx, "SELECT payload FROM workflows ORDER BY uploaded_at, id")
	if err != nil {
		return nil, err
	}

	return decodeAll[models.StoredWorkflow](payloads)
}

func (s *Store) SaveWorkflow(ctx context.Context, workflow *models.StoredWorkflow) error {
	if err := persistence.CheckWorkflow(workflow); err != nil {
		return err
	}

	payload, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	_, err = s.exec(ctx, `
		INSERT INTO workflows (id, name, platform, uploaded_at, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			platform = excluded.platform,
			uploaded_at = excluded.uploaded_at,
			payload = excluded.payload`,
		workflow.ID, workflow.Name, string(workflow.Platform), s.dialect.Time(workflow.UploadedAt), string(payload))
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	s.logger.DebugContext(ctx, "Saved workflow", "workflow_id", workflow.ID)

	return nil
}

func (s *Store) WorkflowByID(ctx context.Context, id string) (*models.StoredWorkflow, error) {
	payload, err := s.queryPayload(ctx, "SELECT payload FROM workflows WHERE id = ?", id)

	workflow, err := decodeOne[models.StoredWorkflow](payload, err, persistence.ErrWorkflowNotFound)
	if err != nil {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, err)
	}

	return workflow, nil
}

func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	result, err := s.exec(ctx, "DELETE FROM workflows WHERE id = ?", id)
	if err := affected(result, err, persistence.ErrWorkflowNotFound); err != nil {
		return persistence.NewWorkflowError("DeleteWorkflow", id, err)
	}

	return nil
}

func (s *Store) SaveExecution(ctx context.Context, record *models.ExecutionRecord) error {
	if err := persistence.CheckExecution(record); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", record.ID, err)
	}

	_, err = s.exec(ctx, `
		INSERT INTO executions (id, workflow_id, status, started_at, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			payload = excluded.payload`,
		record.ID, record.WorkflowID, string(record.Status), s.dialect.Time(record.StartedAt), string(payload))
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", record.ID, err)
	}

	return nil
}

func (s *Store) ExecutionByID(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	payload, err := s.queryPayload(ctx, "SELECT payload FROM executions WHERE id = ?", id)

	record, err := decodeOne[models.ExecutionRecord](payload, err, persistence.ErrExecutionNotFound)
	if err != nil {
		return nil, persistence.NewExecutionError("ExecutionByID", id, err)
	}

	return record, nil
}

func (s *Store) ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.ExecutionRecord, error) {
	payloads, err := s.queryPayloads(ctx,
		"SELECT payload FROM executions WHERE workflow_id = ? ORDER BY started_at, id", workflowID)
	if err != nil {
		return nil, err
	}

	return decodeAll[models.ExecutionRecord](payloads)
}

func (s *Store) Schedules(ctx context.Context) ([]*models.Schedule, error) {
	payloads, err := s.queryPayloads(ctx, "SELECT payload FROM schedules ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}

	return decodeAll[models.Schedule](payloads)
}

func (s *Store) SaveSchedule(ctx context.Context, schedule *models.Schedule) error {
	if err := persistence.CheckSchedule(schedule); err != nil {
		return err
	}

	payload, err := json.Marshal(schedule)
	if err != nil {
		return persistence.NewScheduleError("SaveSchedule", schedule.ID, err)
	}

	_, err = s.exec(ctx, `
		INSERT INTO schedules (id, workflow_id, active, next_due_at, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			active = excluded.active,
			next_due_at = excluded.next_due_at,
			payload = excluded.payload`,
		schedule.ID, schedule.WorkflowID, schedule.Active, s.dialect.Time(schedule.NextDueAt),
		s.dialect.Time(schedule.CreatedAt), string(payload))
	if err != nil {
		return persistence.NewScheduleError("SaveSchedule", schedule.ID, err)
	}

	return nil
}

func (s *Store) ScheduleByID(ctx context.Context, id string) (*models.Schedule, error) {
	payload, err := s.queryPayload(ctx, "SELECT payload FROM schedules WHERE id = ?", id)

	schedule, err := decodeOne[models.Schedule](payload, err, persistence.ErrScheduleNotFound)
	if err != nil {
		return nil, persistence.NewScheduleError("ScheduleByID", id, err)
	}

	return schedule, nil
}

func (s *Store) DeleteSchedule(ctx context.Context, id string) error {
	result, err := s.exec(ctx, "DELETE FROM schedules WHERE id = ?", id)
	if err := affected(result, err, persistence.ErrScheduleNotFound); err != nil {
		return persistence.NewScheduleError("DeleteSchedule", id, err)
	}

	return nil
}

func (s *Store) DueSchedules(ctx context.Context, now time.Time) ([]*models.Schedule, error) {
	payloads, err := s.queryPayloads(ctx,
		"SELECT payload FROM schedules WHERE active = ? AND next_due_at <= ? ORDER BY created_at, id",
		true, s.dialect.Time(now))
	if err != nil {
		return nil, err
	}

	return decodeAll[models.Schedule](payloads)
}

func (s *Store) Stats(ctx context.Context) (persistence.Stats, error) {
	var stats persistence.Stats

	for _, entry := range []struct {
		table string
		count *int
	}{
		{"workflows", &stats.Workflows},
		{"executions", &stats.Executions},
		{"schedules", &stats.Schedules},
	} {
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+entry.table).Scan(entry.count)
		if err != nil {
			return stats, fmt.Errorf("failed to count %s: %w", entry.table, err)
		}
	}

	return stats, nil
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}
