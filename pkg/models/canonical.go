// Package models defines the canonical workflow model shared by parsers, converters and executors.
package models

import "time"

// Platform identifies the origin (or target) automation platform of a document.
type Platform string

const (
	PlatformNodeGraph     Platform = "n8n"    // Node graph with connection map
	PlatformTriggerAction Platform = "zapier" // Single trigger followed by an action list
	PlatformModuleFlow    Platform = "make"   // Scenario built from a module flow
)

// Platforms lists every supported platform tag in detection order.
var Platforms = []Platform{PlatformNodeGraph, PlatformTriggerAction, PlatformModuleFlow}

// IsValid reports whether p is one of the known platform tags.
func (p Platform) IsValid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}

	return false
}

// UnknownKind is the kind assigned to steps whose source carries no type information.
const UnknownKind = "unknown"

// ComplexityLevel is the coarse bucket derived from a complexity score.
type ComplexityLevel string

const (
	ComplexitySimple   ComplexityLevel = "simple"
	ComplexityModerate ComplexityLevel = "moderate"
	ComplexityComplex  ComplexityLevel = "complex"
)

// Complexity is the snapshot computed once at parse time.
type Complexity struct {
	Score         int             `json:"score"           validate:"min=0,max=100"`
	Level         ComplexityLevel `json:"level"           validate:"required,oneof=simple moderate complex"`
	StepsCount    int             `json:"steps_count"`
	HasLoops      bool            `json:"has_loops"`
	HasAI         bool            `json:"has_ai"`
	HasCustomCode bool            `json:"has_custom_code"`
}

// CanonicalStep is one unit of work, independent of the platform it came from.
type CanonicalStep struct {
	ID          string         `json:"id"                    validate:"required"`
	Name        string         `json:"name"                  validate:"required"`
	Kind        string         `json:"kind"                  validate:"required,lowercase"`
	Parameters  map[string]any `json:"parameters"`
	Credentials map[string]any `json:"credentials,omitempty"`
	Position    any            `json:"position,omitempty"`
	Action      string         `json:"action,omitempty"`
}

// CanonicalWorkflow is the normalized form of an uploaded document. Steps are in execution order.
type CanonicalWorkflow struct {
	ID         string           `json:"id,omitempty"`
	Name       string           `json:"name"`
	Platform   Platform         `json:"platform"             validate:"required,oneof=n8n zapier make"`
	Steps      []*CanonicalStep `json:"steps"                validate:"dive"`
	Complexity Complexity       `json:"complexity"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// StepIDs returns the step identifiers in execution order.
func (w *CanonicalWorkflow) StepIDs() []string {
	ids := make([]string, 0, len(w.Steps))
	for _, step := range w.Steps {
		ids = append(ids, step.ID)
	}

	return ids
}

// StoredWorkflow is an uploaded document together with its canonical form.
type StoredWorkflow struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Platform   Platform           `json:"platform"`
	Canonical  *CanonicalWorkflow `json:"parsed"`
	Original   map[string]any     `json:"original,omitempty"`
	UploadedAt time.Time          `json:"uploaded_at"`
}

// Summary is the listing view of a stored workflow.
type Summary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Platform Platform `json:"platform"`
	Steps    int      `json:"steps"`
}

// Summarize builds the listing view of w.
func (w *StoredWorkflow) Summarize() Summary {
	steps := 0
	if w.Canonical != nil {
		steps = len(w.Canonical.Steps)
	}

	return Summary{ID: w.ID, Name: w.Name, Platform: w.Platform, Steps: steps}
}
