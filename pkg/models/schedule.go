package models

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned when schedule validation fails.
var ErrInvalidSchedule = errors.New("invalid schedule configuration")

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Schedule runs a stored workflow periodically. NextDueAt is precomputed so a single poller can
// pick up every due schedule regardless of its expression.
type Schedule struct {
	ID             string         `json:"id"              validate:"required"`
	WorkflowID     string         `json:"workflow_id"     validate:"required"`
	CronExpression string         `json:"cron_expression" validate:"required"`
	Input          map[string]any `json:"input,omitempty"`
	NextDueAt      time.Time      `json:"next_due_at"`
	LastRunAt      *time.Time     `json:"last_run_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Active         bool           `json:"active"`
}

// NewSchedule creates an active schedule due at the first match of expression after now.
func NewSchedule(id, workflowID, expression string, input map[string]any, now time.Time) (*Schedule, error) {
	schedule := &Schedule{
		ID:             id,
		WorkflowID:     workflowID,
		CronExpression: expression,
		Input:          input,
		CreatedAt:      now,
		UpdatedAt:      now,
		Active:         true,
	}

	if err := schedule.Advance(now); err != nil {
		return nil, err
	}

	return schedule, nil
}

// Advance moves NextDueAt to the first match of the expression strictly after reference.
func (s *Schedule) Advance(reference time.Time) error {
	parsed, err := cronParser.Parse(s.CronExpression)
	if err != nil {
		return errors.Join(ErrInvalidSchedule, err)
	}

	s.NextDueAt = parsed.Next(reference)
	s.UpdatedAt = reference

	return nil
}

// IsDue reports whether the schedule should fire at now.
func (s *Schedule) IsDue(now time.Time) bool {
	return s.Active && !s.NextDueAt.After(now)
}

// Validate checks the required fields and the cron expression.
func (s *Schedule) Validate() error {
	if s.ID == "" || s.WorkflowID == "" || s.CronExpression == "" {
		return ErrInvalidSchedule
	}

	if _, err := cronParser.Parse(s.CronExpression); err != nil {
		return errors.Join(ErrInvalidSchedule, err)
	}

	return nil
}
