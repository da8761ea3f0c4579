// Package journal records dispatched commands for later inspection. Two
// backends are provided: an in-memory ring for standalone hosts and a
// Postgres store for deployments that want history across restarts.
package journal

import (
	"context"
	"sync"
	"time"
)

// DefaultTailLimit bounds history queries that do not name a limit.
const DefaultTailLimit = 50

// Record is one journaled command dispatch.
type Record struct {
	ID       string        `json:"id"`
	Command  string        `json:"command"`
	Payload  string        `json:"payload"`
	Status   string        `json:"status"`
	Tick     uint64        `json:"tick"`
	Duration time.Duration `json:"duration"`
	At       time.Time     `json:"at"`
}

// Journal stores dispatch records.
type Journal interface {
	// Record appends one entry.
	Record(ctx context.Context, rec Record) error
	// Tail returns up to limit most recent entries, newest first.
	Tail(ctx context.Context, limit int) ([]Record, error)
}

// MemoryJournal is a bounded in-memory Journal.
type MemoryJournal struct {
	mu       sync.Mutex
	records  []Record
	capacity int
}

// NewMemoryJournal creates a journal retaining at most capacity records.
func NewMemoryJournal(capacity int) *MemoryJournal {
	if capacity <= 0 {
		capacity = 1024
	}
	return &MemoryJournal{capacity: capacity}
}

// Record appends an entry, evicting the oldest when full.
func (m *MemoryJournal) Record(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	if len(m.records) > m.capacity {
		m.records = m.records[len(m.records)-m.capacity:]
	}
	return nil
}

// Tail returns up to limit most recent entries, newest first.
func (m *MemoryJournal) Tail(_ context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultTailLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.records)
	if limit > n {
		limit = n
	}
	out := make([]Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}
