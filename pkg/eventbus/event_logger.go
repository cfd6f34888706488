package eventbus

import (
	"context"
	"log/slog"

	"github.com/dukex/migromat/pkg/events"
)

// LifecycleEvents lists every event type the services publish.
var LifecycleEvents = []events.EventType{
	events.WorkflowUploadedEvent,
	events.WorkflowDeletedEvent,
	events.WorkflowConvertedEvent,
	events.ExecutionStartedEvent,
	events.ExecutionCompletedEvent,
	events.ExecutionFailedEvent,
}

// LogEvents registers a handler that writes every lifecycle event to logger.
func LogEvents(bus EventSubscriber, logger *slog.Logger) error {
	for _, eventType := range LifecycleEvents {
		err := bus.Handle(eventType, func(ctx context.Context, event any) error {
			logger.InfoContext(ctx, "Lifecycle event", "event_type", eventType, "event", event)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Publish sends event through publisher when one is configured. Failures are logged, not returned.
func Publish(ctx context.Context, publisher EventPublisher, logger *slog.Logger, key string, event Event) {
	if publisher == nil {
		return
	}

	if err := publisher.Publish(ctx, key, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
