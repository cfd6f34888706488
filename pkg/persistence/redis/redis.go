// Package redis stores workflows, executions and schedules in Redis as JSON values with sorted-set indexes.
package redis

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/persistence"
)

// DefaultKeyPrefix namespaces every key written by the store.
const DefaultKeyPrefix = "migromat:"

type Persistence struct {
	client redis.UniversalClient
	logger *slog.Logger
	prefix string
}

var _ persistence.Persistence = (*Persistence)(nil)

type Option func(*Persistence)

// WithKeyPrefix replaces DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(p *Persistence) {
		p.prefix = prefix
	}
}

// NewPersistence connects to the redis:// or rediss:// URL and verifies the connection.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string, opts ...Option) (*Persistence, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	p := NewWithClient(redis.NewClient(options), logger, opts...)

	if err := p.HealthCheck(ctx); err != nil {
		_ = p.client.Close()

		return nil, err
	}

	return p, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client redis.UniversalClient, logger *slog.Logger, opts ...Option) *Persistence {
	p := &Persistence{client: client, logger: logger, prefix: DefaultKeyPrefix}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Persistence) key(parts ...string) string {
	key := p.prefix
	for i, part := range parts {
		if i > 0 {
			key += ":"
		}

		key += part
	}

	return key
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func (p *Persistence) getJSON(ctx context.Context, key string, target any) error {
	data, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, target)
}

func (p *Persistence) loadAll(ctx context.Context, index string, keyOf func(id string) string) ([][]byte, error) {
	ids, err := p.client.ZRange(ctx, index, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", index, err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyOf(id)
	}

	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	payloads := make([][]byte, 0, len(values))

	for _, value := range values {
		if raw, ok := value.(string); ok {
			payloads = append(payloads, []byte(raw))
		}
	}

	return payloads, nil
}

func decode[T any](payloads [][]byte) ([]*T, error) {
	records := make([]*T, 0, len(payloads))

	for _, payload := range payloads {
		var record T
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}

		records = append(records, &record)
	}

	return records, nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, redis.Nil) {
		return sentinel
	}

	return err
}

func (p *Persistence) workflowKey(id string) string {
	return p.key("workflow", id)
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.StoredWorkflow, error) {
	payloads, err := p.loadAll(ctx, p.key("workflows"), p.workflowKey)
	if err != nil {
		return nil, err
	}

	return decode[models.StoredWorkflow](payloads)
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.StoredWorkflow) error {
	if err := persistence.CheckWorkflow(workflow); err != nil {
		return err
	}

	data, err := json.Marshal(workflow)
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, p.workflowKey(workflow.ID), data, 0)
		pipe.ZAdd(ctx, p.key("workflows"), redis.Z{Score: score(workflow.UploadedAt), Member: workflow.ID})

		return nil
	})
	if err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	return nil
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.StoredWorkflow, error) {
	var workflow models.StoredWorkflow
	if err := p.getJSON(ctx, p.workflowKey(id), &workflow); err != nil {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, notFound(err, persistence.ErrWorkflowNotFound))
	}

	return &workflow, nil
}

func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	var deleted *redis.IntCmd

	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, p.workflowKey(id))
		pipe.ZRem(ctx, p.key("workflows"), id)

		return nil
	})
	if err != nil {
		return persistence.NewWorkflowError("DeleteWorkflow", id, err)
	}

	if deleted.Val() == 0 {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (p *Persistence) executionKey(id string) string {
	return p.key("execution", id)
}

func (p *Persistence) SaveExecution(ctx context.Context, record *models.ExecutionRecord) error {
	if err := persistence.CheckExecution(record); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", record.ID, err)
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, p.executionKey(record.ID), data, 0)
		pipe.SAdd(ctx, p.key("executions"), record.ID)
		pipe.ZAdd(ctx, p.key("executions", record.WorkflowID), redis.Z{Score: score(record.StartedAt), Member: record.ID})

		return nil
	})
	if err != nil {
		return persistence.NewExecutionError("SaveExecution", record.ID, err)
	}

	return nil
}

func (p *Persistence) ExecutionByID(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	var record models.ExecutionRecord
	if err := p.getJSON(ctx, p.executionKey(id), &record); err != nil {
		return nil, persistence.NewExecutionError("ExecutionByID", id, notFound(err, persistence.ErrExecutionNotFound))
	}

	return &record, nil
}

func (p *Persistence) ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.ExecutionRecord, error) {
	payloads, err := p.loadAll(ctx, p.key("executions", workflowID), p.executionKey)
	if err != nil {
		return nil, err
	}

	return decode[models.ExecutionRecord](payloads)
}

func (p *Persistence) Schedules(ctx context.Context) ([]*models.Schedule, error) {
	values, err := p.client.HVals(ctx, p.key("schedules")).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read schedules: %w", err)
	}

	payloads := make([][]byte, len(values))
	for i, value := range values {
		payloads[i] = []byte(value)
	}

	schedules, err := decode[models.Schedule](payloads)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(schedules, func(a, b *models.Schedule) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return schedules, nil
}

func (p *Persistence) SaveSchedule(ctx context.Context, schedule *models.Schedule) error {
	if err := persistence.CheckSchedule(schedule); err != nil {
		return err
	}

	data, err := json.Marshal(schedule)
	if err != nil {
		return persistence.NewScheduleError("SaveSchedule", schedule.ID, err)
	}

	if err := p.client.HSet(ctx, p.key("schedules"), schedule.ID, data).Err(); err != nil {
		return persistence.NewScheduleError("SaveSchedule", schedule.ID, err)
	}

	return nil
}

func (p *Persistence) ScheduleByID(ctx context.Context, id string) (*models.Schedule, error) {
	data, err := p.client.HGet(ctx, p.key("schedules"), id).Bytes()
	if err != nil {
		return nil, persistence.NewScheduleError("ScheduleByID", id, notFound(err, persistence.ErrScheduleNotFound))
	}

	var schedule models.Schedule
	if err := json.Unmarshal(data, &schedule); err != nil {
		return nil, persistence.NewScheduleError("ScheduleByID", id, err)
	}

	return &schedule, nil
}

func (p *Persistence) DeleteSchedule(ctx context.Context, id string) error {
	deleted, err := p.client.HDel(ctx, p.key("schedules"), id).Result()
	if err != nil {
		return persistence.NewScheduleError("DeleteSchedule", id, err)
	}

	if deleted == 0 {
		return persistence.NewScheduleError("DeleteSchedule", id, persistence.ErrScheduleNotFound)
	}

	return nil
}

func (p *Persistence) DueSchedules(ctx context.Context, now time.Time) ([]*models.Schedule, error) {
	schedules, err := p.Schedules(ctx)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(schedules, func(s *models.Schedule) bool { return !s.IsDue(now) }), nil
}

func (p *Persistence) Stats(ctx context.Context) (persistence.Stats, error) {
	var (
		workflows, executions, schedules *redis.IntCmd
		stats                            persistence.Stats
	)

	_, err := p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		workflows = pipe.ZCard(ctx, p.key("workflows"))
		executions = pipe.SCard(ctx, p.key("executions"))
		schedules = pipe.HLen(ctx, p.key("schedules"))

		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to count records: %w", err)
	}

	stats.Workflows = int(workflows.Val())
	stats.Executions = int(executions.Val())
	stats.Schedules = int(schedules.Val())

	return stats, nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}
