package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/host-bridge/pkg/commsutil"
)

const commsPublisherLogPrefix = "events:comms_publisher"

// CommsPublisherOpts configures CommsPublisher. Nil or zero values use defaults.
type CommsPublisherOpts struct {
	// GlobalCommandSubject overrides the global dispatch event subject
	// (e.g. from BRIDGE_EVENT_SUBJECT).
	GlobalCommandSubject string
}

// CommsPublisher publishes bridge events to COMMS subjects.
type CommsPublisher struct {
	nc                   *comms.Conn
	globalCommandSubject string
}

// NewCommsPublisher creates a new CommsPublisher. Pass nil for opts to use defaults.
func NewCommsPublisher(nc *comms.Conn, opts *CommsPublisherOpts) *CommsPublisher {
	globalSubject := commsutil.SubjectCommandEvent
	if opts != nil && opts.GlobalCommandSubject != "" {
		globalSubject = opts.GlobalCommandSubject
	}
	return &CommsPublisher{nc: nc, globalCommandSubject: globalSubject}
}

// PublishDispatched publishes a CommandDispatchedEvent to both the granular
// and global dispatch subjects.
func (p *CommsPublisher) PublishDispatched(_ context.Context, event *CommandDispatchedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode event: %w", commsPublisherLogPrefix, err)
	}

	// Publish to granular subject
	granularSubject := commsutil.BuildCommandSubject(event.Command)
	if err := p.nc.Publish(granularSubject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, granularSubject, err))
		return err
	}

	// Publish to global subject
	if err := p.nc.Publish(p.globalCommandSubject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, p.globalCommandSubject, err))
		return err
	}

	slog.Debug(fmt.Sprintf("%s - Published dispatch event for %s (%s)", commsPublisherLogPrefix, event.Command, event.Status))
	return nil
}

// PublishLifecycle publishes a LifecycleEvent to both the granular and
// global lifecycle subjects.
func (p *CommsPublisher) PublishLifecycle(_ context.Context, event *LifecycleEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s - failed to encode event: %w", commsPublisherLogPrefix, err)
	}

	granularSubject := commsutil.BuildLifecycleSubject(event.Phase)
	if err := p.nc.Publish(granularSubject, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, granularSubject, err))
		return err
	}

	if err := p.nc.Publish(commsutil.SubjectLifecycleEvent, data); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish to %s: %v", commsPublisherLogPrefix, commsutil.SubjectLifecycleEvent, err))
		return err
	}

	slog.Debug(fmt.Sprintf("%s - Published lifecycle event %s", commsPublisherLogPrefix, event.Phase))
	return nil
}
