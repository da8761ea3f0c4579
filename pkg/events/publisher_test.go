package events

import (
	"context"
	"testing"
	"time"

	"github.com/morezero/host-bridge/pkg/bridge"
)

func TestNoOpPublisher(t *testing.T) {
	p := &NoOpPublisher{}
	if err := p.PublishDispatched(context.Background(), &CommandDispatchedEvent{Command: "ECHO"}); err != nil {
		t.Errorf("PublishDispatched returned %v", err)
	}
	if err := p.PublishLifecycle(context.Background(), &LifecycleEvent{Phase: PhaseStarted}); err != nil {
		t.Errorf("PublishLifecycle returned %v", err)
	}
}

func TestCallbackPublisher(t *testing.T) {
	var gotDispatch *CommandDispatchedEvent
	var gotLifecycle *LifecycleEvent
	p := NewCallbackPublisher(
		func(_ context.Context, e *CommandDispatchedEvent) error {
			gotDispatch = e
			return nil
		},
		func(_ context.Context, e *LifecycleEvent) error {
			gotLifecycle = e
			return nil
		},
	)

	p.PublishDispatched(context.Background(), &CommandDispatchedEvent{Command: "CREATE_OBJECT", Status: "success"})
	if gotDispatch == nil || gotDispatch.Command != "CREATE_OBJECT" {
		t.Errorf("dispatch callback not invoked correctly: %+v", gotDispatch)
	}

	p.PublishLifecycle(context.Background(), &LifecycleEvent{Phase: PhaseStopped})
	if gotLifecycle == nil || gotLifecycle.Phase != PhaseStopped {
		t.Errorf("lifecycle callback not invoked correctly: %+v", gotLifecycle)
	}
}

func TestCallbackPublisher_NilCallbacks(t *testing.T) {
	p := NewCallbackPublisher(nil, nil)
	if err := p.PublishDispatched(context.Background(), &CommandDispatchedEvent{}); err != nil {
		t.Errorf("nil dispatch callback should be a no-op, got %v", err)
	}
	if err := p.PublishLifecycle(context.Background(), &LifecycleEvent{}); err != nil {
		t.Errorf("nil lifecycle callback should be a no-op, got %v", err)
	}
}

func TestObserverMapsDispatchRecord(t *testing.T) {
	var got *CommandDispatchedEvent
	p := NewCallbackPublisher(func(_ context.Context, e *CommandDispatchedEvent) error {
		got = e
		return nil
	}, nil)

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	obs := NewObserver(p)
	obs.CommandDispatched(context.Background(), bridge.DispatchRecord{
		ID:       "cmd-1",
		Command:  "DELETE_OBJECT",
		Status:   "error",
		Tick:     7,
		Duration: 1500 * time.Microsecond,
		At:       at,
	})

	if got == nil {
		t.Fatal("expected a published event")
	}
	if got.ID != "cmd-1" || got.Command != "DELETE_OBJECT" || got.Status != "error" {
		t.Errorf("unexpected event: %+v", got)
	}
	if got.Tick != 7 || got.DurationUS != 1500 {
		t.Errorf("unexpected tick/duration: %+v", got)
	}
	if got.Timestamp != "2026-08-01T12:00:00Z" {
		t.Errorf("unexpected timestamp: %s", got.Timestamp)
	}
}
