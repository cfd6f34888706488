package persistence

import (
	"context"
	"time"

	"github.com/dukex/migromat/pkg/models"
)

// Persistence stores uploaded workflows, execution records and schedules. Lookups of missing
// records return the matching not-found error. Workflows and Schedules are ordered by creation time.
type Persistence interface {
	Workflows(ctx context.Context) ([]*models.StoredWorkflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.StoredWorkflow) error
	WorkflowByID(ctx context.Context, id string) (*models.StoredWorkflow, error)
	DeleteWorkflow(ctx context.Context, id string) error

	SaveExecution(ctx context.Context, record *models.ExecutionRecord) error
	ExecutionByID(ctx context.Context, id string) (*models.ExecutionRecord, error)
	ExecutionsByWorkflow(ctx context.Context, workflowID string) ([]*models.ExecutionRecord, error)

	Schedules(ctx context.Context) ([]*models.Schedule, error)
	SaveSchedule(ctx context.Context, schedule *models.Schedule) error
	ScheduleByID(ctx context.Context, id string) (*models.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
	DueSchedules(ctx context.Context, now time.Time) ([]*models.Schedule, error)

	Stats(ctx context.Context) (Stats, error)
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// Stats counts the stored records.
type Stats struct {
	Workflows  int `json:"workflows"`
	Executions int `json:"executions"`
	Schedules  int `json:"schedules"`
}

// CheckWorkflow rejects values that cannot be stored.
func CheckWorkflow(workflow *models.StoredWorkflow) error {
	if workflow == nil || workflow.ID == "" {
		return NewWorkflowError("SaveWorkflow", "", ErrInvalidRecord)
	}

	return nil
}

// CheckExecution rejects values that cannot be stored.
func CheckExecution(record *models.ExecutionRecord) error {
	if record == nil || record.ID == "" {
		return NewExecutionError("SaveExecution", "", ErrInvalidRecord)
	}

	return nil
}

// CheckSchedule rejects values that cannot be stored.
func CheckSchedule(schedule *models.Schedule) error {
	if schedule == nil || schedule.ID == "" {
		return NewScheduleError("SaveSchedule", "", ErrInvalidRecord)
	}

	return nil
}
