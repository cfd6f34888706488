package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/persistence"
)

// RunPersistenceSuite exercises the behavior every persistence.Persistence implementation must share.
// newStore must return an empty store.
func RunPersistenceSuite(t *testing.T, newStore func(t *testing.T) persistence.Persistence) {
	t.Helper()

	t.Run("workflows", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		workflows, err := store.Workflows(ctx)
		require.NoError(t, err)
		assert.Empty(t, workflows)

		second := NewStoredWorkflow(WithWorkflowName("second"), WithUploadedAt(BaseTime.Add(time.Minute)))
		first := NewStoredWorkflow(WithWorkflowName("first"))

		require.NoError(t, store.SaveWorkflow(ctx, second))
		require.NoError(t, store.SaveWorkflow(ctx, first))

		workflows, err = store.Workflows(ctx)
		require.NoError(t, err)
		require.Len(t, workflows, 2)
		assert.Equal(t, "first", workflows[0].Name)
		assert.Equal(t, "second", workflows[1].Name)

		loaded, err := store.WorkflowByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, loaded.ID)
		assert.Equal(t, models.PlatformTriggerAction, loaded.Platform)
		require.NotNil(t, loaded.Canonical)
		require.Len(t, loaded.Canonical.Steps, 2)
		assert.Equal(t, "gmail", loaded.Canonical.Steps[0].Kind)
		assert.Equal(t, "leads", loaded.Canonical.Steps[0].Parameters["label"])
		assert.Equal(t, models.ComplexitySimple, loaded.Canonical.Complexity.Level)
		assert.True(t, first.UploadedAt.Equal(loaded.UploadedAt))
		assert.Contains(t, loaded.Original, "trigger")

		first.Name = "renamed"
		require.NoError(t, store.SaveWorkflow(ctx, first))

		loaded, err = store.WorkflowByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", loaded.Name)

		require.NoError(t, store.DeleteWorkflow(ctx, first.ID))

		_, err = store.WorkflowByID(ctx, first.ID)
		assert.True(t, persistence.IsWorkflowNotFound(err))
		assert.True(t, persistence.IsWorkflowNotFound(store.DeleteWorkflow(ctx, first.ID)))
		require.ErrorIs(t, store.SaveWorkflow(ctx, nil), persistence.ErrInvalidRecord)

		workflows, err = store.Workflows(ctx)
		require.NoError(t, err)
		assert.Len(t, workflows, 1)
	})

	t.Run("executions", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		later := NewExecution("wf-1", BaseTime.Add(time.Minute))
		earlier := NewExecution("wf-1", BaseTime)
		other := NewExecution("wf-2", BaseTime)

		for _, record := range []*models.ExecutionRecord{later, earlier, other} {
			require.NoError(t, store.SaveExecution(ctx, record))
		}

		require.NoError(t, earlier.AppendLog(models.LogEntry{Timestamp: BaseTime, Level: models.LogLevelInfo, Message: "Starting workflow with 1 steps"}))
		require.NoError(t, earlier.Complete(map[string]any{"ai_result": "success"}, BaseTime.Add(2*time.Second)))
		require.NoError(t, store.SaveExecution(ctx, earlier))

		loaded, err := store.ExecutionByID(ctx, earlier.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ExecutionStatusCompleted, loaded.Status)
		assert.Equal(t, "success", loaded.Result["ai_result"])
		require.Len(t, loaded.Logs, 1)
		assert.Equal(t, models.LogLevelInfo, loaded.Logs[0].Level)
		require.NotNil(t, loaded.Duration)
		assert.InDelta(t, 2.0, *loaded.Duration, 1e-9)

		records, err := store.ExecutionsByWorkflow(ctx, "wf-1")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, earlier.ID, records[0].ID)
		assert.Equal(t, later.ID, records[1].ID)

		_, err = store.ExecutionByID(ctx, "missing")
		assert.True(t, persistence.IsExecutionNotFound(err))
		require.ErrorIs(t, store.SaveExecution(ctx, &models.ExecutionRecord{}), persistence.ErrInvalidRecord)
	})

	t.Run("schedules", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		due := NewSchedule("wf-1")
		notDue := NewSchedule("wf-1")
		notDue.NextDueAt = BaseTime.Add(24 * time.Hour)
		inactive := NewSchedule("wf-2")
		inactive.Active = false

		for _, schedule := range []*models.Schedule{due, notDue, inactive} {
			require.NoError(t, store.SaveSchedule(ctx, schedule))
		}

		schedules, err := store.Schedules(ctx)
		require.NoError(t, err)
		assert.Len(t, schedules, 3)

		dueSchedules, err := store.DueSchedules(ctx, BaseTime.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, dueSchedules, 1)
		assert.Equal(t, due.ID, dueSchedules[0].ID)
		assert.Equal(t, "0 * * * *", dueSchedules[0].CronExpression)
		assert.Equal(t, "cron", dueSchedules[0].Input["source"])

		loaded, err := store.ScheduleByID(ctx, inactive.ID)
		require.NoError(t, err)
		assert.False(t, loaded.Active)

		require.NoError(t, store.DeleteSchedule(ctx, due.ID))
		_, err = store.ScheduleByID(ctx, due.ID)
		assert.True(t, persistence.IsScheduleNotFound(err))
		assert.True(t, persistence.IsScheduleNotFound(store.DeleteSchedule(ctx, due.ID)))
	})

	t.Run("stats and health", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.SaveWorkflow(ctx, NewStoredWorkflow()))
		require.NoError(t, store.SaveExecution(ctx, NewExecution("wf-1", BaseTime)))
		require.NoError(t, store.SaveExecution(ctx, NewExecution("wf-1", BaseTime)))

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, persistence.Stats{Workflows: 1, Executions: 2, Schedules: 0}, stats)
		require.NoError(t, store.HealthCheck(ctx))
	})
}
