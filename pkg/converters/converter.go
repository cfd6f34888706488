// Package converters re-emits canonical workflows in the document format of a target platform.
// Every converter reads the CanonicalWorkflow only, never the uploaded source document.
package converters

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/dukex/migromat/pkg/models"
)

// Result is a converted document together with its mapping report.
type Result struct {
	Platform models.Platform `json:"platform"`
	Document any             `json:"workflow"`
	Report   *Report         `json:"validation"`
}

type Converter struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Converter {
	return &Converter{logger: logger.With("module", "converter")}
}

// Convert dispatches to the converter of the target platform. Converting to the workflow's own
// platform re-emits it from its canonical steps.
func (c *Converter) Convert(wf *models.CanonicalWorkflow, target models.Platform) (*Result, error) {
	var (
		document any
		report   *Report
		err      error
	)

	switch target {
	case models.PlatformModuleFlow:
		document, report, err = c.ToModuleFlow(wf)
	case models.PlatformTriggerAction:
		document, report, err = c.ToTriggerAction(wf)
	case models.PlatformNodeGraph:
		document, report, err = c.ToNodeGraph(wf)
	default:
		return nil, c.fail(wf, target, "", fmt.Errorf("%w: %q", ErrUnsupportedTarget, target))
	}

	if err != nil {
		return nil, err
	}

	return &Result{Platform: target, Document: document, Report: report}, nil
}

// guard turns a panic during assembly into a ConversionError so that no partial document escapes.
func (c *Converter) guard(wf *models.CanonicalWorkflow, target models.Platform, err *error) {
	if r := recover(); r != nil {
		*err = c.fail(wf, target, "", fmt.Errorf("%w: %v", ErrInvalidWorkflow, r))
	}
}

func (c *Converter) fail(wf *models.CanonicalWorkflow, target models.Platform, stepID string, err error) error {
	name := ""
	if wf != nil {
		name = wf.Name
	}

	conversionErr := &ConversionError{Target: target, Workflow: name, StepID: stepID, Err: err}
	c.logger.Error("Conversion failed", "target", target, "workflow", name, "step_id", stepID, "error", err)

	return conversionErr
}

func (c *Converter) validate(wf *models.CanonicalWorkflow, target models.Platform) error {
	if wf == nil {
		return c.fail(wf, target, "", fmt.Errorf("%w: workflow is nil", ErrInvalidWorkflow))
	}

	for i, step := range wf.Steps {
		if step == nil {
			return c.fail(wf, target, fmt.Sprint(i), fmt.Errorf("%w: step %d is nil", ErrInvalidWorkflow, i))
		}
	}

	return nil
}

func cloneParameters(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return maps.Clone(m)
}
