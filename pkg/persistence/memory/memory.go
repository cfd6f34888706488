// Package memory keeps workflows, executions and schedules in process memory.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/persistence"
)

// Persistence is a mutex-guarded in-memory store. Values are copied on the way in and out so
// callers never share state with the store.
type Persistence struct {
	mu         sync.RWMutex
	workflows  map[string]*models.StoredWorkflow
	executions map[string]*models.ExecutionRecord
	schedules  map[string]*models.Schedule
}

var _ persistence.Persistence = (*Persistence)(nil)

func NewPersistence() *Persistence {
	return &Persistence{
		workflows:  map[string]*models.StoredWorkflow{},
		executions: map[string]*models.ExecutionRecord{},
		schedules:  map[string]*models.Schedule{},
	}
}

func copyWorkflow(w *models.StoredWorkflow) *models.StoredWorkflow {
	clone := *w

	return &clone
}

func copySchedule(s *models.Schedule) *models.Schedule {
	clone := *s

	return &clone
}

func (p *Persistence) Workflows(_ context.Context) ([]*models.StoredWorkflow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	workflows := make([]*models.StoredWorkflow, 0, len(p.workflows))
	for _, workflow := range p.workflows {
		workflows = append(workflows, copyWorkflow(workflow))
	}

	slices.SortFunc(workflows, func(a, b *models.StoredWorkflow) int {
		return cmp.Or(a.UploadedAt.Compare(b.UploadedAt), cmp.Compare(a.ID, b.ID))
	})

	return workflows, nil
}

func (p *Persistence) SaveWorkflow(_ context.Context, workflow *models.StoredWorkflow) error {
	if err := persistence.CheckWorkflow(workflow); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.workflows[workflow.ID] = copyWorkflow(workflow)

	return nil
}

func (p *Persistence) WorkflowByID(_ context.Context, id string) (*models.StoredWorkflow, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	workflow, ok := p.workflows[id]
	if !ok {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, persistence.ErrWorkflowNotFound)
	}

	return copyWorkflow(workflow), nil
}

func (p *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.workflows[id]; !ok {
		return persistence.NewWorkflowError("DeleteWorkflow", id, persistence.ErrWorkflowNotFound)
	}

	delete(p.workflows, id)

	return nil
}

func (p *Persistence) SaveExecution(_ context.Context, record *models.ExecutionRecord) error {
	if err := persistence.CheckExecution(record); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.executions[record.ID] = record.Snapshot()

	return nil
}

func (p *Persistence) ExecutionByID(_ context.Context, id string) (*models.ExecutionRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	record, ok := p.executions[id]
	if !ok {
		return nil, persistence.NewExecutionError("ExecutionByID", id, persistence.ErrExecutionNotFound)
	}

	return record.Snapshot(), nil
}

func (p *Persistence) ExecutionsByWorkflow(_ context.Context, workflowID string) ([]*models.ExecutionRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	records := make([]*models.ExecutionRecord, 0)

	for _, record := range p.executions {
		if record.WorkflowID == workflowID {
			records = append(records, record.Snapshot())
		}
	}

	slices.SortFunc(records, func(a, b *models.ExecutionRecord) int {
		return cmp.Or(a.StartedAt.Compare(b.StartedAt), cmp.Compare(a.ID, b.ID))
	})

	return records, nil
}

func (p *Persistence) Schedules(_ context.Context) ([]*models.Schedule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.sortedSchedules(func(*models.Schedule) bool { return true }), nil
}

func (p *Persistence) sortedSchedules(keep func(*models.Schedule) bool) []*models.Schedule {
	schedules := make([]*models.Schedule, 0, len(p.schedules))

	for _, schedule := range p.schedules {
		if keep(schedule) {
			schedules = append(schedules, copySchedule(schedule))
		}
	}

	slices.SortFunc(schedules, func(a, b *models.Schedule) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return schedules
}

func (p *Persistence) SaveSchedule(_ context.Context, schedule *models.Schedule) error {
	if err := persistence.CheckSchedule(schedule); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.schedules[schedule.ID] = copySchedule(schedule)

	return nil
}

func (p *Persistence) ScheduleByID(_ context.Context, id string) (*models.Schedule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	schedule, ok := p.schedules[id]
	if !ok {
		return nil, persistence.NewScheduleError("ScheduleByID", id, persistence.ErrScheduleNotFound)
	}

	return copySchedule(schedule), nil
}

func (p *Persistence) DeleteSchedule(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.schedules[id]; !ok {
		return persistence.NewScheduleError("DeleteSchedule", id, persistence.ErrScheduleNotFound)
	}

	delete(p.schedules, id)

	return nil
}

func (p *Persistence) DueSchedules(_ context.Context, now time.Time) ([]*models.Schedule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.sortedSchedules(func(s *models.Schedule) bool { return s.IsDue(now) }), nil
}

func (p *Persistence) Stats(_ context.Context) (persistence.Stats, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return persistence.Stats{
		Workflows:  len(p.workflows),
		Executions: len(p.executions),
		Schedules:  len(p.schedules),
	}, nil
}

func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

func (p *Persistence) Close(_ context.Context) error {
	return nil
}
