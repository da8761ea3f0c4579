package events

import "context"

// EventPublisher is the interface for publishing bridge events.
type EventPublisher interface {
	PublishDispatched(ctx context.Context, event *CommandDispatchedEvent) error
	PublishLifecycle(ctx context.Context, event *LifecycleEvent) error
}

// NoOpPublisher is an EventPublisher that does nothing (for hosts running
// without an event bus).
type NoOpPublisher struct{}

// PublishDispatched is a no-op.
func (p *NoOpPublisher) PublishDispatched(_ context.Context, _ *CommandDispatchedEvent) error {
	return nil
}

// PublishLifecycle is a no-op.
func (p *NoOpPublisher) PublishLifecycle(_ context.Context, _ *LifecycleEvent) error {
	return nil
}

// CallbackPublisher is an EventPublisher that calls callback functions (for
// testing).
type CallbackPublisher struct {
	onDispatched func(ctx context.Context, event *CommandDispatchedEvent) error
	onLifecycle  func(ctx context.Context, event *LifecycleEvent) error
}

// NewCallbackPublisher creates a new CallbackPublisher. Nil callbacks are
// treated as no-ops.
func NewCallbackPublisher(
	onDispatched func(ctx context.Context, event *CommandDispatchedEvent) error,
	onLifecycle func(ctx context.Context, event *LifecycleEvent) error,
) *CallbackPublisher {
	return &CallbackPublisher{onDispatched: onDispatched, onLifecycle: onLifecycle}
}

// PublishDispatched calls the dispatch callback.
func (p *CallbackPublisher) PublishDispatched(ctx context.Context, event *CommandDispatchedEvent) error {
	if p.onDispatched == nil {
		return nil
	}
	return p.onDispatched(ctx, event)
}

// PublishLifecycle calls the lifecycle callback.
func (p *CallbackPublisher) PublishLifecycle(ctx context.Context, event *LifecycleEvent) error {
	if p.onLifecycle == nil {
		return nil
	}
	return p.onLifecycle(ctx, event)
}
