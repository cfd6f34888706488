package services

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dukex/migromat/pkg/converters"
	"github.com/dukex/migromat/pkg/events"
	"github.com/dukex/migromat/pkg/mocks"
	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/parsers"
	"github.com/dukex/migromat/pkg/persistence/memory"
	"github.com/dukex/migromat/pkg/scriptgen"
)

const nodeGraphDocument = `{
  "name": "Lead Intake",
  "nodes": [
    {"name": "Webhook", "type": "n8n-nodes-base.webhook", "parameters": {"path": "lead"}},
    {"name": "Save Lead", "type": "n8n-nodes-base.airtable", "parameters": {}},
    {"name": "Note", "type": "n8n-nodes-base.stickyNote", "parameters": {}}
  ],
  "connections": {
    "Webhook": {"main": [[{"node": "Save Lead", "type": "main", "index": 0}]]}
  }
}`

const triggerActionDocument = `{
  "trigger": {"app": "gmail", "action": "new_email"},
  "steps": [{"app": "slack", "action": "post"}]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPublisher() *mocks.MockEventBus {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	return bus
}

func TestNewWorkflow(t *testing.T) {
	t.Parallel()

	persistence := memory.NewPersistence()
	service := NewWorkflow(persistence, nil, testLogger())

	assert.NotNil(t, service)
	assert.Equal(t, persistence, service.persistence)
}

func TestWorkflow_Upload(t *testing.T) {
	t.Parallel()

	publisher := newPublisher()
	persistence := memory.NewPersistence()
	service := NewWorkflow(persistence, publisher, testLogger())

	stored, err := service.Upload(t.Context(), []byte(nodeGraphDocument), "lead.json")
	require.NoError(t, err)

	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "Lead Intake", stored.Name)
	assert.Equal(t, models.PlatformNodeGraph, stored.Platform)
	assert.Equal(t, stored.ID, stored.Canonical.ID)
	assert.Len(t, stored.Canonical.Steps, 3)
	assert.False(t, stored.UploadedAt.IsZero())

	saved, err := persistence.WorkflowByID(t.Context(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Name, saved.Name)

	assert.Equal(t, []events.EventType{events.WorkflowUploadedEvent}, publisher.PublishedTypes())
	publisher.AssertCalled(t, "Publish", mock.Anything, stored.ID, mock.MatchedBy(func(event events.WorkflowUploaded) bool {
		return event.StepsCount == 3 && event.Platform == models.PlatformNodeGraph
	}))
}

func TestWorkflow_Upload_NameFallsBackToFilename(t *testing.T) {
	t.Parallel()

	service := NewWorkflow(memory.NewPersistence(), nil, testLogger())

	stored, err := service.Upload(t.Context(), []byte(triggerActionDocument), "zap.json")
	require.NoError(t, err)

	assert.Equal(t, "zap.json", stored.Name)
	assert.Equal(t, models.PlatformTriggerAction, stored.Platform)
	require.Len(t, stored.Canonical.Steps, 2)
	assert.Equal(t, "gmail - new_email", stored.Canonical.Steps[0].Name)
}

func TestWorkflow_Upload_Errors(t *testing.T) {
	t.Parallel()

	service := NewWorkflow(memory.NewPersistence(), nil, testLogger())

	tests := []struct {
		name  string
		raw   string
		check func(error) bool
	}{
		{"empty", "  ", func(err error) bool { return errors.Is(err, ErrEmptyDocument) }},
		{"not a document", "{broken", parsers.IsInvalidDocument},
		{"unknown shape", `{"hello": "world"}`, parsers.IsPlatformDetectionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stored, err := service.Upload(t.Context(), []byte(tt.raw), "doc.json")
			require.Error(t, err)
			assert.Nil(t, stored)
			assert.True(t, tt.check(err))
			assert.True(t, IsValidationError(err))
		})
	}

	stats, err := service.Stats(t.Context())
	require.NoError(t, err)
	assert.Zero(t, stats.Workflows)
}

func TestWorkflow_ListAndDelete(t *testing.T) {
	t.Parallel()

	publisher := newPublisher()
	persistence := memory.NewPersistence()
	service := NewWorkflow(persistence, publisher, testLogger())

	first, err := service.Upload(t.Context(), []byte(nodeGraphDocument), "a.json")
	require.NoError(t, err)

	second, err := service.Upload(t.Context(), []byte(triggerActionDocument), "b.json")
	require.NoError(t, err)

	schedule, err := models.NewSchedule("sched-1", first.ID, "@hourly", nil, first.UploadedAt)
	require.NoError(t, err)
	require.NoError(t, persistence.SaveSchedule(t.Context(), schedule))

	summaries, err := service.List(t.Context())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, models.Summary{ID: first.ID, Name: "Lead Intake", Platform: models.PlatformNodeGraph, Steps: 3}, summaries[0])

	require.NoError(t, service.Delete(t.Context(), first.ID))

	_, err = service.FetchByID(t.Context(), first.ID)
	require.ErrorIs(t, err, ErrWorkflowNotFound)
	assert.True(t, IsNotFound(err))

	_, err = persistence.ScheduleByID(t.Context(), "sched-1")
	require.ErrorIs(t, err, ErrScheduleNotFound)

	remaining, err := service.List(t.Context())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, second.ID, remaining[0].ID)

	err = service.Delete(t.Context(), first.ID)
	require.ErrorIs(t, err, ErrWorkflowNotFound)

	assert.Contains(t, publisher.PublishedTypes(), events.WorkflowDeletedEvent)
}

func TestWorkflow_Convert(t *testing.T) {
	t.Parallel()

	publisher := newPublisher()
	service := NewWorkflow(memory.NewPersistence(), publisher, testLogger())

	stored, err := service.Upload(t.Context(), []byte(nodeGraphDocument), "lead.json")
	require.NoError(t, err)

	download, err := service.Convert(t.Context(), stored.ID, "MAKE")
	require.NoError(t, err)

	assert.Equal(t, "lead_intake_make.json", download.Filename)
	assert.Equal(t, models.PlatformModuleFlow, download.Platform)

	document, ok := download.Document.(*models.ModuleFlowDocument)
	require.True(t, ok)
	require.Len(t, document.Flow, 2)
	assert.Equal(t, 1, document.Flow[0].ID)
	assert.Equal(t, 100, document.Flow[0].Metadata.Designer.X)
	assert.Equal(t, 300, document.Flow[1].Metadata.Designer.X)
	assert.Equal(t, 1, download.Report.Dropped)

	assert.Contains(t, publisher.PublishedTypes(), events.WorkflowConvertedEvent)

	t.Run("unknown target", func(t *testing.T) {
		t.Parallel()

		_, err := service.Convert(t.Context(), stored.ID, "ifttt")
		require.ErrorIs(t, err, converters.ErrUnsupportedTarget)
		assert.True(t, IsValidationError(err))
	})

	t.Run("missing workflow", func(t *testing.T) {
		t.Parallel()

		_, err := service.Convert(t.Context(), "missing", "zapier")
		require.ErrorIs(t, err, ErrWorkflowNotFound)
	})
}

func TestWorkflow_Export(t *testing.T) {
	t.Parallel()

	service := NewWorkflow(memory.NewPersistence(), nil, testLogger())

	stored, err := service.Upload(t.Context(), []byte(nodeGraphDocument), "lead.json")
	require.NoError(t, err)

	script, err := service.Export(t.Context(), stored.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "workflow_lead_intake.py", script.Filename)
	assert.Equal(t, scriptgen.Python, script.Language)
	assert.Empty(t, script.Warning)
	assert.Contains(t, script.Source, "Lead Intake")

	again, err := service.Export(t.Context(), stored.ID, "python")
	require.NoError(t, err)
	assert.Equal(t, script.Source, again.Source)

	js, err := service.Export(t.Context(), stored.ID, "js")
	require.NoError(t, err)
	assert.Equal(t, "workflow_lead_intake.js", js.Filename)

	_, err = service.Export(t.Context(), stored.ID, "cobol")
	require.ErrorIs(t, err, scriptgen.ErrUnsupportedLanguage)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_Export_EmptyWorkflowReturnsPlaceholder(t *testing.T) {
	t.Parallel()

	persistence := memory.NewPersistence()
	service := NewWorkflow(persistence, nil, testLogger())

	stored, err := service.Upload(t.Context(), []byte(`{"name": "Empty", "flow": []}`), "empty.json")
	require.NoError(t, err)

	script, err := service.Export(t.Context(), stored.ID, "python")
	require.NoError(t, err)
	assert.NotEmpty(t, script.Warning)
	assert.Contains(t, script.Source, "No steps found")
}

func TestWorkflow_HealthCheck(t *testing.T) {
	t.Parallel()

	service := NewWorkflow(memory.NewPersistence(), nil, testLogger())

	message, ok := service.HealthCheck(t.Context())
	assert.True(t, ok)
	assert.Equal(t, "Persistence layer is healthy", message)

	unset := &Workflow{}
	message, ok = unset.HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Equal(t, "Persistence layer not initialized", message)
}

func TestWorkflow_PersistenceFailures(t *testing.T) {
	t.Parallel()

	errUnavailable := errors.New("connection refused")

	store := &mocks.MockPersistence{}
	store.On("HealthCheck", mock.Anything).Return(errUnavailable)
	store.On("SaveWorkflow", mock.Anything, mock.Anything).Return(errUnavailable)
	store.On("WorkflowByID", mock.Anything, "wf-1").Return(nil, ErrWorkflowNotFound)

	publisher := newPublisher()
	service := NewWorkflow(store, publisher, testLogger())

	message, ok := service.HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Equal(t, "Persistence layer is unhealthy: connection refused", message)

	_, err := service.Upload(t.Context(), []byte(triggerActionDocument), "zap.json")
	require.ErrorIs(t, err, errUnavailable)
	assert.False(t, IsValidationError(err))

	err = service.Delete(t.Context(), "wf-1")
	require.ErrorIs(t, err, ErrWorkflowNotFound)

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}
