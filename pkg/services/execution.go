package services

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dukex/migromat/pkg/eventbus"
	"github.com/dukex/migromat/pkg/events"
	"github.com/dukex/migromat/pkg/executor"
	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/persistence"
)

// StartExecutionRequest asks for one background run of a stored workflow.
type StartExecutionRequest struct {
	WorkflowID  string            `json:"workflow_id" validate:"required"`
	Input       map[string]any    `json:"input_data"`
	Credentials map[string]string `json:"credentials"`
	ScheduleID  string            `json:"-"`
}

// Execution starts workflow runs in the background and keeps their records up to date.
type Execution struct {
	persistence  persistence.Persistence
	orchestrator *executor.Orchestrator
	publisher    eventbus.EventPublisher
	validator    *validator.Validate
	logger       *slog.Logger
	now          func() time.Time
	running      sync.WaitGroup
}

// NewExecution creates a new execution service. publisher may be nil.
func NewExecution(
	persistence persistence.Persistence,
	orchestrator *executor.Orchestrator,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Execution {
	return &Execution{
		persistence:  persistence,
		orchestrator: orchestrator,
		publisher:    publisher,
		validator:    validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger.With("module", "execution_service"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start stores a running record and executes the workflow on its own goroutine. It returns the
// record as it was before the first step ran; callers poll Get for progress.
func (e *Execution) Start(ctx context.Context, req StartExecutionRequest) (*models.ExecutionRecord, error) {
	if err := e.validator.Struct(req); err != nil {
		return nil, NewValidationError("Start", "INVALID_REQUEST", err.Error(), ErrInvalidRequest)
	}

	stored, err := e.persistence.WorkflowByID(ctx, req.WorkflowID)
	if err != nil {
		return nil, err
	}

	record := models.NewExecutionRecord(uuid.New().String(), stored.ID, e.now())
	if err := e.persistence.SaveExecution(ctx, record.Snapshot()); err != nil {
		return nil, err
	}

	eventbus.Publish(ctx, e.publisher, e.logger, stored.ID, events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, stored.ID),
		ExecutionID: record.ID,
		ScheduleID:  req.ScheduleID,
	})

	started := record.Snapshot()

	e.running.Add(1)

	// The run outlives the request that started it and must not read from its context.
	go func() {
		defer e.running.Done()
		e.run(context.Background(), record, stored.Canonical, req)
	}()

	return started, nil
}

func (e *Execution) run(ctx context.Context, record *models.ExecutionRecord, wf *models.CanonicalWorkflow, req StartExecutionRequest) {
	logger := e.logger.With("execution_id", record.ID, "workflow_id", record.WorkflowID)

	observe := func(current *models.ExecutionRecord) {
		if err := e.persistence.SaveExecution(ctx, current.Snapshot()); err != nil {
			logger.ErrorContext(ctx, "Failed to save execution record", "error", err)
		}
	}

	runErr := e.orchestrator.Run(ctx, record, wf, req.Input, req.Credentials, observe)

	duration := 0.0
	if record.Duration != nil {
		duration = *record.Duration
	}

	if runErr != nil {
		eventbus.Publish(ctx, e.publisher, logger, record.WorkflowID, events.ExecutionFailed{
			BaseEvent:   events.NewBaseEvent(events.ExecutionFailedEvent, record.WorkflowID),
			ExecutionID: record.ID,
			Error:       runErr.Error(),
			Duration:    duration,
		})

		return
	}

	eventbus.Publish(ctx, e.publisher, logger, record.WorkflowID, events.ExecutionCompleted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionCompletedEvent, record.WorkflowID),
		ExecutionID: record.ID,
		ResultKeys:  slices.Sorted(maps.Keys(record.Result)),
		Duration:    duration,
	})
}

// Get returns the latest stored state of an execution.
func (e *Execution) Get(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	return e.persistence.ExecutionByID(ctx, id)
}

// ListByWorkflow returns every execution of a workflow, oldest first.
func (e *Execution) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.ExecutionRecord, error) {
	return e.persistence.ExecutionsByWorkflow(ctx, workflowID)
}

// Wait blocks until every execution started by this service has finished.
func (e *Execution) Wait() {
	e.running.Wait()
}
