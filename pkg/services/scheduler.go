package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/persistence"
)

// DefaultPollInterval is how often the scheduler looks for due schedules.
const DefaultPollInterval = time.Minute

// CreateScheduleRequest asks for periodic executions of a stored workflow.
type CreateScheduleRequest struct {
	WorkflowID     string         `json:"-"               validate:"required"`
	CronExpression string         `json:"cron_expression" validate:"required"`
	Input          map[string]any `json:"input_data"`
}

// Scheduler is the centralized poller that starts executions for due schedules.
type Scheduler struct {
	persistence persistence.Persistence
	executions  *Execution
	validator   *validator.Validate
	logger      *slog.Logger
	interval    time.Duration
	now         func() time.Time

	mu      sync.Mutex
	ticker  *time.Ticker
	done    chan struct{}
	started bool
}

// NewScheduler creates a scheduler polling every interval. A non-positive interval selects
// DefaultPollInterval.
func NewScheduler(persistence persistence.Persistence, executions *Execution, logger *slog.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Scheduler{
		persistence: persistence,
		executions:  executions,
		validator:   validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("module", "scheduler"),
		interval:    interval,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the cron expression and stores an active schedule for an existing workflow.
func (s *Scheduler) Create(ctx context.Context, req CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("CreateSchedule", "INVALID_REQUEST", err.Error(), ErrInvalidRequest)
	}

	if _, err := s.persistence.WorkflowByID(ctx, req.WorkflowID); err != nil {
		return nil, err
	}

	schedule, err := models.NewSchedule(uuid.New().String(), req.WorkflowID, req.CronExpression, req.Input, s.now())
	if err != nil {
		return nil, NewValidationError("CreateSchedule", "INVALID_SCHEDULE", err.Error(), err)
	}

	if err := s.persistence.SaveSchedule(ctx, schedule); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Schedule created",
		"schedule_id", schedule.ID,
		"workflow_id", schedule.WorkflowID,
		"cron_expression", schedule.CronExpression,
		"next_due_at", schedule.NextDueAt)

	return schedule, nil
}

func (s *Scheduler) Get(ctx context.Context, id string) (*models.Schedule, error) {
	return s.persistence.ScheduleByID(ctx, id)
}

func (s *Scheduler) List(ctx context.Context) ([]*models.Schedule, error) {
	return s.persistence.Schedules(ctx)
}

func (s *Scheduler) Delete(ctx context.Context, id string) error {
	if _, err := s.persistence.ScheduleByID(ctx, id); err != nil {
		return err
	}

	return s.persistence.DeleteSchedule(ctx, id)
}

// Start launches the poller. It stops when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	s.ticker = time.NewTicker(s.interval)
	s.done = make(chan struct{})
	s.started = true

	go s.poll(ctx, s.ticker, s.done)

	s.logger.Info("Scheduler started", "interval", s.interval)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.ticker.Stop()
	close(s.done)
	s.started = false

	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) poll(ctx context.Context, ticker *time.Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.ErrorContext(ctx, "Failed to process due schedules", "error", err)
			}
		}
	}
}

// Tick starts one execution for every schedule due now and moves each to its next due time.
// Schedules of deleted workflows are deactivated. It returns the number of executions started.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	now := s.now()

	due, err := s.persistence.DueSchedules(ctx, now)
	if err != nil {
		return 0, err
	}

	started := 0

	for _, schedule := range due {
		logger := s.logger.With("schedule_id", schedule.ID, "workflow_id", schedule.WorkflowID)

		_, err := s.executions.Start(ctx, StartExecutionRequest{
			WorkflowID: schedule.WorkflowID,
			Input:      schedule.Input,
			ScheduleID: schedule.ID,
		})

		switch {
		case errors.Is(err, ErrWorkflowNotFound):
			logger.WarnContext(ctx, "Deactivating schedule of missing workflow")
			schedule.Active = false
		case err != nil:
			logger.ErrorContext(ctx, "Failed to start scheduled execution", "error", err)

			continue
		default:
			started++
			schedule.LastRunAt = &now
		}

		if err := schedule.Advance(now); err != nil {
			logger.ErrorContext(ctx, "Failed to advance schedule", "error", err)

			continue
		}

		if err := s.persistence.SaveSchedule(ctx, schedule); err != nil {
			logger.ErrorContext(ctx, "Failed to save schedule", "error", err)
		}
	}

	return started, nil
}
