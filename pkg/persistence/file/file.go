// Package file provides file-based persistence: one JSON document per workflow, execution and schedule.
package file

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root       string
	mu         sync.RWMutex
	workflows  collection[models.StoredWorkflow]
	executions collection[models.ExecutionRecord]
	schedules  collection[models.Schedule]
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:       cleanRoot,
		workflows:  newCollection[models.StoredWorkflow](cleanRoot, "workflows"),
		executions: newCollection[models.ExecutionRecord](cleanRoot, "executions"),
		schedules:  newCollection[models.Schedule](cleanRoot, "schedules"),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if err := os.MkdirAll(fp.root, 0o750); err != nil {
		return fmt.Errorf("persistence root %s unavailable: %w", fp.root, err)
	}

	return nil
}

func (fp *Persistence) Workflows(_ context.Context) ([]*models.StoredWorkflow, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	workflows, err := fp.workflows.all()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(workflows, func(a, b *models.StoredWorkflow) int {
		return cmp.Or(a.UploadedAt.Compare(b.UploadedAt), cmp.Compare(a.ID, b.ID))
	})

	return workflows, nil
}

func (fp *Persistence) SaveWorkflow(_ context.Context, workflow *models.StoredWorkflow) error {
	if err := persistence.CheckWorkflow(workflow); err != nil {
		return err
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := fp.workflows.save(workflow.ID, workflow); err != nil {
		return persistence.NewWorkflowError("SaveWorkflow", workflow.ID, err)
	}

	return nil
}

func (fp *Persistence) WorkflowByID(_ context.Context, id string) (*models.StoredWorkflow, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	workflow, err := fp.workflows.load(id)
	if err != nil {
		return nil, persistence.NewWorkflowError("WorkflowByID", id, notFound(err, persistence.ErrWorkflowNotFound))
	}

	return workflow, nil
}

func (fp *Persistence) DeleteWorkflow(_ context.Context, id string) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := fp.workflows.remove(id); err != nil {
		return persistence.NewWorkflowError("DeleteWorkflow", id, notFound(err, persistence.ErrWorkflowNotFound))
	}

	return nil
}

func (fp *Persistence) SaveExecution(_ context.Context, record *models.ExecutionRecord) error {
	if err := persistence.CheckExecution(record); err != nil {
		return err
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := fp.executions.save(record.ID, record); err != nil {
		return persistence.NewExecutionError("SaveExecution", record.ID, err)
	}

	return nil
}

func (fp *Persistence) ExecutionByID(_ context.Context, id string) (*models.ExecutionRecord, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	record, err := fp.executions.load(id)
	if err != nil {
		return nil, persistence.NewExecutionError("ExecutionByID", id, notFound(err, persistence.ErrExecutionNotFound))
	}

	return record, nil
}

func (fp *Persistence) ExecutionsByWorkflow(_ context.Context, workflowID string) ([]*models.ExecutionRecord, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	records, err := fp.executions.all()
	if err != nil {
		return nil, err
	}

	records = slices.DeleteFunc(records, func(r *models.ExecutionRecord) bool { return r.WorkflowID != workflowID })
	slices.SortFunc(records, func(a, b *models.ExecutionRecord) int {
		return cmp.Or(a.StartedAt.Compare(b.StartedAt), cmp.Compare(a.ID, b.ID))
	})

	return records, nil
}

func (fp *Persistence) Schedules(_ context.Context) ([]*models.Schedule, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	return fp.sortedSchedules()
}

func (fp *Persistence) sortedSchedules() ([]*models.Schedule, error) {
	schedules, err := fp.schedules.all()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(schedules, func(a, b *models.Schedule) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	return schedules, nil
}

func (fp *Persistence) SaveSchedule(_ context.Context, schedule *models.Schedule) error {
	if err := persistence.CheckSchedule(schedule); err != nil {
		return err
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := fp.schedules.save(schedule.ID, schedule); err != nil {
		return persistence.NewScheduleError("SaveSchedule", schedule.ID, err)
	}

	return nil
}

func (fp *Persistence) ScheduleByID(_ context.Context, id string) (*models.Schedule, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	schedule, err := fp.schedules.load(id)
	if err != nil {
		return nil, persistence.NewScheduleError("ScheduleByID", id, notFound(err, persistence.ErrScheduleNotFound))
	}

	return schedule, nil
}

func (fp *Persistence) DeleteSchedule(_ context.Context, id string) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := fp.schedules.remove(id); err != nil {
		return persistence.NewScheduleError("DeleteSchedule", id, notFound(err, persistence.ErrScheduleNotFound))
	}

	return nil
}

func (fp *Persistence) DueSchedules(_ context.Context, now time.Time) ([]*models.Schedule, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	schedules, err := fp.sortedSchedules()
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(schedules, func(s *models.Schedule) bool { return !s.IsDue(now) }), nil
}

func (fp *Persistence) Stats(_ context.Context) (persistence.Stats, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	var stats persistence.Stats

	for _, entry := range []struct {
		dir   string
		count *int
	}{
		{fp.workflows.dir, &stats.Workflows},
		{fp.executions.dir, &stats.Executions},
		{fp.schedules.dir, &stats.Schedules},
	} {
		files, err := fs.Glob(os.DirFS(entry.dir), "*.json")
		if err != nil {
			return stats, fmt.Errorf("failed to count %s: %w", entry.dir, err)
		}

		*entry.count = len(files)
	}

	return stats, nil
}

// notFound maps missing files to the resource's not-found sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return sentinel
	}

	return err
}
