// Package executor runs canonical workflows step by step against the registered step handlers.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/migromat/pkg/models"
	"github.com/dukex/migromat/pkg/otelhelper"
	"github.com/dukex/migromat/pkg/protocol"
	"github.com/dukex/migromat/pkg/registry"
)

// DefaultStepDelay is the pause between consecutive steps.
const DefaultStepDelay = 100 * time.Millisecond

// LogSink receives execution log lines as they happen.
type LogSink func(level models.LogLevel, message string)

// RecordObserver is called after every change to a running ExecutionRecord, from the goroutine
// that owns the record.
type RecordObserver func(record *models.ExecutionRecord)

type Orchestrator struct {
	registry   *registry.Registry
	logger     *slog.Logger
	tracer     trace.Tracer
	delay      time.Duration
	now        func() time.Time
	newSession func() *http.Client
}

type Option func(*Orchestrator)

// WithStepDelay overrides DefaultStepDelay. Zero disables the pause.
func WithStepDelay(delay time.Duration) Option {
	return func(o *Orchestrator) {
		o.delay = delay
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithSessionFactory replaces the per-execution HTTP client constructor.
func WithSessionFactory(factory func() *http.Client) Option {
	return func(o *Orchestrator) {
		o.newSession = factory
	}
}

func NewOrchestrator(reg *registry.Registry, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:   reg,
		logger:     logger.With("module", "executor"),
		tracer:     otelhelper.Tracer("migromat/executor"),
		delay:      DefaultStepDelay,
		now:        func() time.Time { return time.Now().UTC() },
		newSession: newSession,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Execute runs the steps of wf in order, feeding each step's output to the next. Log lines are
// streamed to sink. The first failing step aborts the run with a *StepExecutionError.
func (o *Orchestrator) Execute(
	ctx context.Context,
	wf *models.CanonicalWorkflow,
	input map[string]any,
	credentials map[string]string,
	sink LogSink,
) (result map[string]any, err error) {
	if wf == nil {
		return nil, ErrNilWorkflow
	}

	if sink == nil {
		sink = func(models.LogLevel, string) {}
	}

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.WorkflowNameKey, wf.Name),
		attribute.Int(otelhelper.StepCountKey, len(wf.Steps)),
	)
	defer span.End()

	session := o.newSession()
	defer session.CloseIdleConnections()

	data := maps.Clone(input)
	if data == nil {
		data = map[string]any{}
	}

	total := len(wf.Steps)
	sink(models.LogLevelInfo, fmt.Sprintf("Starting workflow with %d steps", total))

	for i, step := range wf.Steps {
		index := i + 1
		sink(models.LogLevelInfo, fmt.Sprintf("[%d/%d] Executing: %s", index, total, step.Name))

		data, err = o.executeStep(ctx, index, step, protocol.StepInput{
			Step:        step,
			Data:        data,
			Credentials: credentials,
			Client:      session,
		})
		if err != nil {
			sink(models.LogLevelError, fmt.Sprintf("✗ %s failed: %v", step.Name, unwrapStep(err)))
			otelhelper.SetError(span, err)

			return nil, err
		}

		sink(models.LogLevelSuccess, fmt.Sprintf("✓ %s completed", step.Name))

		if index < total {
			if err := o.pause(ctx); err != nil {
				stepErr := &StepExecutionError{Index: index, StepID: step.ID, StepName: step.Name, Kind: step.Kind, Err: err}
				sink(models.LogLevelError, fmt.Sprintf("✗ execution interrupted after %s: %v", step.Name, err))
				otelhelper.SetError(span, stepErr)

				return nil, stepErr
			}
		}
	}

	sink(models.LogLevelSuccess, "All steps completed successfully")
	otelhelper.SetOK(span)

	return data, nil
}

func (o *Orchestrator) executeStep(ctx context.Context, index int, step *models.CanonicalStep, input protocol.StepInput) (result map[string]any, err error) {
	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "workflow.step",
		attribute.String(otelhelper.StepIDKey, step.ID),
		attribute.String(otelhelper.StepNameKey, step.Name),
		attribute.String(otelhelper.StepKindKey, step.Kind),
	)
	defer span.End()

	wrap := func(cause error) error {
		stepErr := &StepExecutionError{Index: index, StepID: step.ID, StepName: step.Name, Kind: step.Kind, Err: cause}
		otelhelper.SetError(span, stepErr)

		return stepErr
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, wrap(fmt.Errorf("handler panic: %v", r))
		}
	}()

	handler, handlerID, err := o.registry.Resolve(step)
	if err != nil {
		return nil, wrap(err)
	}

	span.SetAttributes(attribute.String(otelhelper.HandlerIDKey, handlerID))
	logger := o.logger.With("step_id", step.ID, "step", step.Name, "handler", handlerID)

	result, err = handler.Execute(ctx, input, logger)
	if err != nil {
		return nil, wrap(err)
	}

	if result == nil {
		result = map[string]any{}
	}

	return result, nil
}

func (o *Orchestrator) pause(ctx context.Context) error {
	if o.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(o.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes wf on behalf of record and drives its state machine: every log line is appended to
// the record, and the record ends completed with the final payload or failed with the step error.
// observe, when not nil, sees the record after each change.
func (o *Orchestrator) Run(
	ctx context.Context,
	record *models.ExecutionRecord,
	wf *models.CanonicalWorkflow,
	input map[string]any,
	credentials map[string]string,
	observe RecordObserver,
) error {
	if observe == nil {
		observe = func(*models.ExecutionRecord) {}
	}

	logger := o.logger.With("execution_id", record.ID, "workflow_id", record.WorkflowID)

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "execution.run",
		attribute.String(otelhelper.ExecutionIDKey, record.ID),
		attribute.String(otelhelper.WorkflowIDKey, record.WorkflowID),
	)
	defer span.End()

	sink := func(level models.LogLevel, message string) {
		if err := record.AppendLog(models.LogEntry{Timestamp: o.now(), Level: level, Message: message}); err != nil {
			logger.Warn("Dropped log line for finished execution", "message", message)

			return
		}

		observe(record)
	}

	result, err := o.Execute(ctx, wf, input, credentials, sink)
	if err != nil {
		logger.Error("Execution failed", "error", err)
		otelhelper.SetError(span, err)

		if failErr := record.Fail(err, o.now()); failErr != nil {
			return fmt.Errorf("record failure: %w", failErr)
		}

		observe(record)

		return err
	}

	if err := record.Complete(result, o.now()); err != nil {
		return fmt.Errorf("record completion: %w", err)
	}

	logger.Info("Execution completed", "steps", len(wf.Steps))
	observe(record)

	return nil
}

func unwrapStep(err error) error {
	var stepErr *StepExecutionError
	if errors.As(err, &stepErr) {
		return stepErr.Err
	}

	return err
}
