// Package events defines event types and structures for workflow lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukex/migromat/pkg/models"
)

type EventType string

// Topic carries every lifecycle event.
const Topic = "migromat.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowUploadedEvent  EventType = "workflow.uploaded"
	WorkflowDeletedEvent   EventType = "workflow.deleted"
	WorkflowConvertedEvent EventType = "workflow.converted"

	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}

type WorkflowUploaded struct {
	BaseEvent

	Name       string                 `json:"name"`
	Platform   models.Platform        `json:"platform"`
	StepsCount int                    `json:"steps_count"`
	Complexity models.ComplexityLevel `json:"complexity"`
}

func (WorkflowUploaded) GetType() EventType {
	return WorkflowUploadedEvent
}

type WorkflowDeleted struct {
	BaseEvent
}

func (WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

// WorkflowConverted is emitted for every successful download in another platform's format.
type WorkflowConverted struct {
	BaseEvent

	Target     models.Platform `json:"target"`
	Mapped     int             `json:"mapped"`
	Unmapped   int             `json:"unmapped"`
	Confidence int             `json:"confidence"`
}

func (WorkflowConverted) GetType() EventType {
	return WorkflowConvertedEvent
}

type ExecutionStarted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	ScheduleID  string `json:"schedule_id,omitempty"`
}

func (ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID string   `json:"execution_id"`
	ResultKeys  []string `json:"result_keys,omitempty"`
	Duration    float64  `json:"duration"`
}

func (ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	ExecutionID string  `json:"execution_id"`
	Error       string  `json:"error"`
	Duration    float64 `json:"duration"`
}

func (ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

// New returns an empty event of the given type for decoding, or false for unknown types.
func New(eventType EventType) (any, bool) {
	switch eventType {
	case WorkflowUploadedEvent:
		return &WorkflowUploaded{}, true
	case WorkflowDeletedEvent:
		return &WorkflowDeleted{}, true
	case WorkflowConvertedEvent:
		return &WorkflowConverted{}, true
	case ExecutionStartedEvent:
		return &ExecutionStarted{}, true
	case ExecutionCompletedEvent:
		return &ExecutionCompleted{}, true
	case ExecutionFailedEvent:
		return &ExecutionFailed{}, true
	default:
		return nil, false
	}
}
