package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

const pumpLogPrefix = "bridge:pump"

// DispatchRecord describes one command the pump dispatched.
type DispatchRecord struct {
	ID       string
	Command  string
	Payload  string
	Envelope string
	Status   string
	Duration time.Duration
	Tick     uint64
	At       time.Time
}

// DispatchObserver sees every dispatched command (journal, event publishing).
// Observers run inline on the pump goroutine between ticks' command work, so
// they should return quickly; a panicking or failing observer is contained
// and never affects command processing.
type DispatchObserver interface {
	CommandDispatched(ctx context.Context, rec DispatchRecord)
}

// TickPump is the sole consumer of a PendingTable. Whatever scheduling
// primitive the host provides (a per-frame callback, or the controller's
// internal ticker) calls Tick once per host tick; commands therefore execute
// strictly serially on that goroutine and never concurrently with each other.
type TickPump struct {
	table      *PendingTable
	dispatcher *Dispatcher
	observers  []DispatchObserver
	ticks      atomic.Uint64
}

// NewTickPump creates a TickPump over the given table and dispatcher.
func NewTickPump(table *PendingTable, dispatcher *Dispatcher, observers ...DispatchObserver) *TickPump {
	return &TickPump{table: table, dispatcher: dispatcher, observers: observers}
}

// Tick drains the table once and dispatches each drained entry in insertion
// order, fulfilling each future exactly once. Nothing is allowed to escape:
// a panic while dispatching one entry becomes that entry's error envelope,
// so one bad command can never stall the rest of the batch or crash the
// host's tick loop. Returns the number of entries processed.
func (p *TickPump) Tick(ctx context.Context) int {
	entries := p.table.DrainAll()
	if len(entries) == 0 {
		return 0
	}
	tick := p.ticks.Add(1)

	for _, entry := range entries {
		start := time.Now()
		envelope := p.dispatch(entry)
		entry.Fulfill(envelope)

		rec := DispatchRecord{
			ID:       entry.ID,
			Command:  commandType(entry.Payload),
			Payload:  entry.Payload,
			Envelope: envelope,
			Status:   envelopeStatus(envelope),
			Duration: time.Since(start),
			Tick:     tick,
			At:       start.UTC(),
		}
		p.notify(ctx, rec)
	}
	return len(entries)
}

// Ticks returns how many non-empty drain passes have run.
func (p *TickPump) Ticks() uint64 {
	return p.ticks.Load()
}

func (p *TickPump) dispatch(entry *PendingEntry) (envelope string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error(fmt.Sprintf("%s - dispatch panic for %s: %v", pumpLogPrefix, entry.ID, r))
			envelope = ErrorEnvelope(CodeHandlerFailure, fmt.Sprintf("dispatch panic: %v", r))
		}
	}()
	return p.dispatcher.Execute(entry.Payload)
}

func (p *TickPump) notify(ctx context.Context, rec DispatchRecord) {
	for _, obs := range p.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error(fmt.Sprintf("%s - observer panic for %s: %v", pumpLogPrefix, rec.ID, r))
				}
			}()
			obs.CommandDispatched(ctx, rec)
		}()
	}
}

// commandType extracts the type field from a raw payload for diagnostics.
// Empty for payloads the dispatcher rejected before deserialization.
func commandType(payload string) string {
	var req CommandRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return ""
	}
	return req.Type
}
