package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dukex/migromat/pkg/events"
	"github.com/dukex/migromat/pkg/executor"
	"github.com/dukex/migromat/pkg/mocks"
	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/persistence/memory"
	"github.com/dukex/migromat/pkg/protocol"
	"github.com/dukex/migromat/pkg/registry"
	"github.com/dukex/migromat/pkg/testutil"
)

var errRejected = errors.New("rejected by upstream")

// rejectingFactory fails every step whose kind is "reject".
type rejectingFactory struct{}

func (rejectingFactory) ID() string { return "reject" }

func (rejectingFactory) Matches(stepKind string) bool { return stepKind == "reject" }

func (rejectingFactory) Create(map[string]any) (protocol.StepHandler, error) {
	return rejectingHandler{}, nil
}

type rejectingHandler struct{}

func (rejectingHandler) Execute(context.Context, protocol.StepInput, *slog.Logger) (map[string]any, error) {
	return nil, errRejected
}

func newExecutionService(t *testing.T, persistence *memory.Persistence, publisher *mocks.MockEventBus) *Execution {
	t.Helper()

	reg := registry.NewRegistry(testLogger())
	reg.RegisterHandler(rejectingFactory{})
	reg.RegisterDefaultHandlers()

	orchestrator := executor.NewOrchestrator(reg, testLogger(), executor.WithStepDelay(0))

	if publisher == nil {
		return NewExecution(persistence, orchestrator, nil, testLogger())
	}

	return NewExecution(persistence, orchestrator, publisher, testLogger())
}

func storedWorkflow(t *testing.T, persistence *memory.Persistence, kinds ...string) *models.StoredWorkflow {
	t.Helper()

	stored := testutil.NewStoredWorkflow()
	stored.Canonical.Steps = make([]*models.CanonicalStep, 0, len(kinds))

	for i, kind := range kinds {
		stored.Canonical.Steps = append(stored.Canonical.Steps, &models.CanonicalStep{
			ID:   string(rune('a' + i)),
			Name: kind + " step",
			Kind: kind,
		})
	}

	require.NoError(t, persistence.SaveWorkflow(t.Context(), stored))

	return stored
}

func TestExecution_Start_Completes(t *testing.T) {
	t.Parallel()

	persistence := memory.NewPersistence()
	publisher := newPublisher()
	service := newExecutionService(t, persistence, publisher)
	stored := storedWorkflow(t, persistence, "webhook", "slack")

	started, err := service.Start(t.Context(), StartExecutionRequest{
		WorkflowID: stored.ID,
		Input:      map[string]any{"lead": "ada"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusRunning, started.Status)
	assert.Equal(t, stored.ID, started.WorkflowID)
	assert.Nil(t, started.CompletedAt)

	service.Wait()

	record, err := service.Get(t.Context(), started.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusCompleted, record.Status)
	assert.NotNil(t, record.CompletedAt)
	assert.NotNil(t, record.Duration)
	assert.Equal(t, "ada", record.Result["lead"])
	assert.NotEmpty(t, record.Logs)

	records, err := service.ListByWorkflow(t.Context(), stored.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t,
		[]events.EventType{events.ExecutionStartedEvent, events.ExecutionCompletedEvent},
		publisher.PublishedTypes())
}

func TestExecution_Start_FailedStep(t *testing.T) {
	t.Parallel()

	persistence := memory.NewPersistence()
	publisher := newPublisher()
	service := newExecutionService(t, persistence, publisher)
	stored := storedWorkflow(t, persistence, "webhook", "reject")

	started, err := service.Start(t.Context(), StartExecutionRequest{WorkflowID: stored.ID})
	require.NoError(t, err)

	service.Wait()

	record, err := service.Get(t.Context(), started.ID)
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionStatusFailed, record.Status)
	assert.Contains(t, record.Error, errRejected.Error())
	assert.NotNil(t, record.CompletedAt)
	assert.Nil(t, record.Result)

	successes, failures := 0, 0

	for _, entry := range record.Logs {
		switch entry.Level {
		case models.LogLevelSuccess:
			successes++
		case models.LogLevelError:
			failures++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)

	publisher.AssertCalled(t, "Publish", mock.Anything, stored.ID, mock.MatchedBy(func(event events.ExecutionFailed) bool {
		return event.ExecutionID == started.ID && event.Error != ""
	}))
}

func TestExecution_Start_Errors(t *testing.T) {
	t.Parallel()

	persistence := memory.NewPersistence()
	service := newExecutionService(t, persistence, nil)

	_, err := service.Start(t.Context(), StartExecutionRequest{})
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.True(t, IsValidationError(err))

	_, err = service.Start(t.Context(), StartExecutionRequest{WorkflowID: "missing"})
	require.ErrorIs(t, err, ErrWorkflowNotFound)

	_, err = service.Get(t.Context(), "missing")
	require.ErrorIs(t, err, ErrExecutionNotFound)
}

func TestExecution_Start_OutlivesRequestContext(t *testing.T) {
	t.Parallel()

	persistence := memory.NewPersistence()
	service := newExecutionService(t, persistence, nil)
	stored := storedWorkflow(t, persistence, "webhook", "email", "database")

	ctx, cancel := context.WithCancel(t.Context())
	started, err := service.Start(ctx, StartExecutionRequest{WorkflowID: stored.ID})
	require.NoError(t, err)
	cancel()

	service.Wait()

	require.Eventually(t, func() bool {
		record, err := service.Get(t.Context(), started.ID)

		return err == nil && record.Status == models.ExecutionStatusCompleted
	}, time.Second, 10*time.Millisecond)
}
