package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dukex/migromat/pkg/converters"
	"github.com/dukex/migromat/pkg/eventbus"
	"github.com/dukex/migromat/pkg/events"
	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/parsers"
	"github.com/dukex/migromat/pkg/persistence"
	"github.com/dukex/migromat/pkg/scriptgen"
)

type Workflow struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	converter   *converters.Converter
	validator   *validator.Validate
	logger      *slog.Logger
	now         func() time.Time
}

// NewWorkflow creates a new workflow service. publisher may be nil.
func NewWorkflow(persistence persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *Workflow {
	return &Workflow{
		persistence: persistence,
		publisher:   publisher,
		converter:   converters.New(logger),
		validator:   validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("module", "workflow_service"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Stats counts the stored workflows, executions and schedules.
func (w *Workflow) Stats(ctx context.Context) (persistence.Stats, error) {
	return w.persistence.Stats(ctx)
}

// Upload decodes raw, detects its platform, parses it into the canonical model and stores it.
// The stored name is the document's own name, or filename when the document has none.
func (w *Workflow) Upload(ctx context.Context, raw []byte, filename string) (*models.StoredWorkflow, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, NewValidationError("Upload", "EMPTY_DOCUMENT", "", ErrEmptyDocument)
	}

	doc, err := parsers.Decode(raw)
	if err != nil {
		return nil, err
	}

	canonical, err := parsers.DetectAndParse(doc, w.logger)
	if err != nil {
		return nil, err
	}

	if err := w.validator.Struct(canonical); err != nil {
		return nil, NewValidationError("Upload", "INVALID_WORKFLOW", err.Error(), errors.Join(ErrInvalidRequest, err))
	}

	id := uuid.New().String()
	canonical.ID = id

	stored := &models.StoredWorkflow{
		ID:         id,
		Name:       documentName(doc, filename, canonical.Name),
		Platform:   canonical.Platform,
		Canonical:  canonical,
		Original:   doc,
		UploadedAt: w.now(),
	}

	if err := w.persistence.SaveWorkflow(ctx, stored); err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "Workflow uploaded",
		"workflow_id", id,
		"platform", stored.Platform,
		"steps", len(canonical.Steps),
		"complexity", canonical.Complexity.Level)

	eventbus.Publish(ctx, w.publisher, w.logger, id, events.WorkflowUploaded{
		BaseEvent:  events.NewBaseEvent(events.WorkflowUploadedEvent, id),
		Name:       stored.Name,
		Platform:   stored.Platform,
		StepsCount: len(canonical.Steps),
		Complexity: canonical.Complexity.Level,
	})

	return stored, nil
}

func documentName(doc map[string]any, filename, fallback string) string {
	if name, ok := doc["name"].(string); ok && strings.TrimSpace(name) != "" {
		return name
	}

	if filename != "" {
		return filename
	}

	return fallback
}

// List returns a summary of every stored workflow in upload order.
func (w *Workflow) List(ctx context.Context) ([]models.Summary, error) {
	workflows, err := w.persistence.Workflows(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.Summary, 0, len(workflows))
	for _, workflow := range workflows {
		summaries = append(summaries, workflow.Summarize())
	}

	return summaries, nil
}

func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.StoredWorkflow, error) {
	return w.persistence.WorkflowByID(ctx, id)
}

// Delete removes a workflow together with its schedules. Execution records are kept.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	if _, err := w.persistence.WorkflowByID(ctx, id); err != nil {
		return err
	}

	schedules, err := w.persistence.Schedules(ctx)
	if err != nil {
		return err
	}

	for _, schedule := range schedules {
		if schedule.WorkflowID != id {
			continue
		}

		if err := w.persistence.DeleteSchedule(ctx, schedule.ID); err != nil && !persistence.IsScheduleNotFound(err) {
			return err
		}
	}

	if err := w.persistence.DeleteWorkflow(ctx, id); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Workflow deleted", "workflow_id", id)
	eventbus.Publish(ctx, w.publisher, w.logger, id, events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, id),
	})

	return nil
}

// Download is a stored workflow converted to another platform's document.
type Download struct {
	Filename string
	*converters.Result
}

// Convert re-emits a stored workflow in the document format of target.
func (w *Workflow) Convert(ctx context.Context, id, target string) (*Download, error) {
	platform := models.Platform(strings.ToLower(strings.TrimSpace(target)))
	if !platform.IsValid() {
		return nil, NewValidationError("Convert", "UNSUPPORTED_TARGET", "unsupported target platform "+target, converters.ErrUnsupportedTarget)
	}

	stored, err := w.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := w.converter.Convert(stored.Canonical, platform)
	if err != nil {
		return nil, err
	}

	eventbus.Publish(ctx, w.publisher, w.logger, id, events.WorkflowConverted{
		BaseEvent:  events.NewBaseEvent(events.WorkflowConvertedEvent, id),
		Target:     platform,
		Mapped:     result.Report.Mapped,
		Unmapped:   result.Report.Unmapped,
		Confidence: result.Report.Confidence,
	})

	return &Download{
		Filename: scriptgen.FileStem(stored.Name) + "_" + string(platform) + ".json",
		Result:   result,
	}, nil
}

// Script is generated source text ready for download. Warning is set when the generator could only
// produce its error-comment placeholder.
type Script struct {
	Filename string
	Language scriptgen.Language
	Source   string
	Warning  string
}

// Export generates a standalone script for a stored workflow.
func (w *Workflow) Export(ctx context.Context, id, language string) (*Script, error) {
	lang, err := scriptgen.ParseLanguage(language)
	if err != nil {
		return nil, NewValidationError("Export", "UNSUPPORTED_LANGUAGE", "", err)
	}

	stored, err := w.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	script := &Script{
		Filename: "workflow_" + scriptgen.Filename(stored.Name, lang),
		Language: lang,
	}

	script.Source, err = scriptgen.Generate(stored.Canonical, lang)
	if err != nil {
		w.logger.WarnContext(ctx, "Script generation failed", "workflow_id", id, "language", lang, "error", err)
		script.Warning = err.Error()
	}

	return script, nil
}
