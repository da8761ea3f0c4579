package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nuid"
)

// ErrWaitTimeout is returned by PendingEntry.Wait when the host tick did not
// process the entry within the caller's residency limit.
var ErrWaitTimeout = errors.New("bridge: timed out waiting for command result")

// PendingEntry pairs one raw command payload with the single-assignment
// future its connection is waiting on.
type PendingEntry struct {
	ID      string
	Payload string

	once sync.Once
	done chan string
}

func newPendingEntry(payload string) *PendingEntry {
	return &PendingEntry{
		ID:      nuid.Next(),
		Payload: payload,
		done:    make(chan string, 1),
	}
}

// Fulfill resolves the entry's future with a serialized envelope. Only the
// first call takes effect; later calls are ignored.
func (e *PendingEntry) Fulfill(envelope string) {
	e.once.Do(func() { e.done <- envelope })
}

// Wait blocks until the entry is fulfilled, the context ends, or the timeout
// elapses. A zero timeout waits indefinitely (bounded only by the context).
func (e *PendingEntry) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case envelope := <-e.done:
		return envelope, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-deadline:
		return "", ErrWaitTimeout
	}
}

// PendingTable is the sole synchronization point between connection
// goroutines (producers) and the tick pump (the single consumer). All inserts
// and the drain happen under one lock; entries removed by a drain are never
// re-inserted.
type PendingTable struct {
	mu      sync.Mutex
	entries []*PendingEntry
}

// NewPendingTable creates an empty PendingTable. Tables are plain injectable
// objects; construct one per bridge instance.
func NewPendingTable() *PendingTable {
	return &PendingTable{}
}

// Enqueue stores a payload under a fresh id and returns the entry whose
// future the caller should await. Safe for concurrent use.
func (t *PendingTable) Enqueue(payload string) *PendingEntry {
	entry := newPendingEntry(payload)
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()
	return entry
}

// DrainAll atomically removes and returns every queued entry in insertion
// order. Processing happens outside the lock, so producers can keep
// enqueueing while a drained batch is dispatched; those entries land in the
// next drain.
func (t *PendingTable) DrainAll() []*PendingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	drained := t.entries
	t.entries = nil
	return drained
}

// Len reports the number of queued entries.
func (t *PendingTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
