package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		t.Parallel()

		workflowErr := persistence.NewWorkflowError("WorkflowByID", "workflow-123", persistence.ErrWorkflowNotFound)
		executionErr := persistence.NewExecutionError("ExecutionByID", "exec-1", persistence.ErrExecutionNotFound)
		scheduleErr := fmt.Errorf("load: %w", persistence.NewScheduleError("ScheduleByID", "s-1", persistence.ErrScheduleNotFound))

		assert.True(t, persistence.IsWorkflowNotFound(workflowErr))
		assert.True(t, persistence.IsExecutionNotFound(executionErr))
		assert.True(t, persistence.IsScheduleNotFound(scheduleErr))
		assert.False(t, persistence.IsWorkflowNotFound(executionErr))
		assert.True(t, persistence.IsNotFound(scheduleErr))
		assert.False(t, persistence.IsNotFound(errors.New("disk full")))
	})

	t.Run("record error contains context", func(t *testing.T) {
		t.Parallel()

		err := persistence.NewWorkflowError("DeleteWorkflow", "workflow-123", persistence.ErrWorkflowNotFound)

		assert.Equal(t, "DeleteWorkflow operation failed for workflow workflow-123: workflow not found", err.Error())
		assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
	})
}

func TestCheckRecords(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, persistence.CheckWorkflow(nil), persistence.ErrInvalidRecord)
	assert.ErrorIs(t, persistence.CheckWorkflow(&models.StoredWorkflow{}), persistence.ErrInvalidRecord)
	assert.NoError(t, persistence.CheckWorkflow(&models.StoredWorkflow{ID: "wf"}))
	assert.ErrorIs(t, persistence.CheckExecution(&models.ExecutionRecord{}), persistence.ErrInvalidRecord)
	assert.ErrorIs(t, persistence.CheckSchedule(nil), persistence.ErrInvalidRecord)
}
