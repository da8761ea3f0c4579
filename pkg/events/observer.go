package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/morezero/host-bridge/pkg/bridge"
)

const observerLogPrefix = "events:observer"

// Observer adapts an EventPublisher to the dispatch observer hook. Publish
// failures are logged and dropped; events never fail a command.
type Observer struct {
	publisher EventPublisher
}

// NewObserver creates an Observer publishing through the given publisher.
func NewObserver(publisher EventPublisher) *Observer {
	return &Observer{publisher: publisher}
}

// CommandDispatched publishes one dispatch event.
func (o *Observer) CommandDispatched(ctx context.Context, rec bridge.DispatchRecord) {
	event := &CommandDispatchedEvent{
		ID:         rec.ID,
		Command:    rec.Command,
		Status:     rec.Status,
		Tick:       rec.Tick,
		DurationUS: rec.Duration.Microseconds(),
		Timestamp:  rec.At.UTC().Format(time.RFC3339Nano),
	}
	if err := o.publisher.PublishDispatched(ctx, event); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to publish dispatch event for %s: %v", observerLogPrefix, rec.ID, err))
	}
}
