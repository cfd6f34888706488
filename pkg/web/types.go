// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"github.com/dukex/migromat/pkg/models"
)

// UploadResponse is returned after a document was parsed and stored.
type UploadResponse struct {
	WorkflowID string            `json:"workflow_id"`
	Name       string            `json:"name"`
	Platform   models.Platform   `json:"platform"`
	StepsCount int               `json:"steps_count"`
	Complexity models.Complexity `json:"complexity"`
	Message    string            `json:"message"`
}

// WorkflowListResponse lists the stored workflows.
type WorkflowListResponse struct {
	Workflows []models.Summary `json:"workflows"`
	Total     int              `json:"total"`
}

// ExecuteRequest represents the request body for starting an execution.
type ExecuteRequest struct {
	InputData   map[string]any    `json:"input_data"`
	Credentials map[string]string `json:"credentials" validate:"omitempty,dive,keys,required,endkeys"`
}

// ExecuteResponse is returned as soon as an execution was started.
type ExecuteResponse struct {
	ExecutionID string                 `json:"execution_id"`
	Status      models.ExecutionStatus `json:"status"`
	Message     string                 `json:"message"`
}

// CreateScheduleRequest represents the request body for scheduling a workflow.
type CreateScheduleRequest struct {
	CronExpression string         `json:"cron_expression" validate:"required"`
	InputData      map[string]any `json:"input_data"`
}

// HealthResponse reports the store status and record counts.
type HealthResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Workflows  int    `json:"workflows"`
	Executions int    `json:"executions"`
	Schedules  int    `json:"schedules"`
}

// MessageResponse carries a short confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
