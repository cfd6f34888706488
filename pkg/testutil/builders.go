// Package testutil provides test data builders and a contract suite shared by persistence tests.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukex/migromat/pkg/models"
)

// BaseTime is the reference instant used by the builders.
var BaseTime = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// NewStoredWorkflow creates a two-step trigger/action workflow with default values that can be overridden.
func NewStoredWorkflow(overrides ...func(*models.StoredWorkflow)) *models.StoredWorkflow {
	id := uuid.New().String()
	workflow := &models.StoredWorkflow{
		ID:       id,
		Name:     "Lead intake",
		Platform: models.PlatformTriggerAction,
		Canonical: &models.CanonicalWorkflow{
			ID:       id,
			Name:     "Lead intake",
			Platform: models.PlatformTriggerAction,
			Steps: []*models.CanonicalStep{
				{ID: "0", Name: "Gmail - New Email", Kind: "gmail", Parameters: map[string]any{"label": "leads"}},
				{ID: "1", Name: "Slack - Send Message", Kind: "slack", Parameters: map[string]any{"channel": "#sales"}},
			},
			Complexity: models.Complexity{Score: 20, Level: models.ComplexitySimple, StepsCount: 2},
			CreatedAt:  BaseTime,
		},
		Original: map[string]any{
			"trigger": map[string]any{"app": "gmail"},
			"steps":   []any{map[string]any{"app": "slack"}},
		},
		UploadedAt: BaseTime,
	}

	for _, override := range overrides {
		override(workflow)
	}

	return workflow
}

// WithWorkflowName sets the stored and canonical name.
func WithWorkflowName(name string) func(*models.StoredWorkflow) {
	return func(w *models.StoredWorkflow) {
		w.Name = name
		w.Canonical.Name = name
	}
}

// WithUploadedAt sets the upload instant.
func WithUploadedAt(at time.Time) func(*models.StoredWorkflow) {
	return func(w *models.StoredWorkflow) {
		w.UploadedAt = at
	}
}

// NewExecution creates a running execution of workflowID started at startedAt.
func NewExecution(workflowID string, startedAt time.Time) *models.ExecutionRecord {
	return models.NewExecutionRecord(uuid.New().String(), workflowID, startedAt)
}

// NewSchedule creates an hourly schedule for workflowID created at BaseTime.
func NewSchedule(workflowID string) *models.Schedule {
	schedule, err := models.NewSchedule(uuid.New().String(), workflowID, "0 * * * *", map[string]any{"source": "cron"}, BaseTime)
	if err != nil {
		panic(err)
	}

	return schedule
}
