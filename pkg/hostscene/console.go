package hostscene

import (
	"strings"
	"sync"
	"time"
)

const defaultConsoleCapacity = 512

// ConsoleMessage is one host console entry.
type ConsoleMessage struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// ConsoleLog is a bounded ring of console messages. Unlike the scene state it
// is safe for concurrent use, since the host may log from any goroutine.
type ConsoleLog struct {
	mu       sync.Mutex
	messages []ConsoleMessage
	capacity int
}

// NewConsoleLog creates a log that keeps at most capacity messages.
func NewConsoleLog(capacity int) *ConsoleLog {
	if capacity <= 0 {
		capacity = defaultConsoleCapacity
	}
	return &ConsoleLog{capacity: capacity}
}

// Append records a message, evicting the oldest when full.
func (c *ConsoleLog) Append(level, message string) {
	if level == "" {
		level = "info"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, ConsoleMessage{Level: level, Message: message, At: time.Now().UTC()})
	if len(c.messages) > c.capacity {
		c.messages = c.messages[len(c.messages)-c.capacity:]
	}
}

// Read returns up to limit most recent messages, oldest first, optionally
// filtered by level (exact) and a case-insensitive search substring.
// A limit of zero means no limit.
func (c *ConsoleLog) Read(level, search string, limit int) []ConsoleMessage {
	needle := strings.ToLower(search)
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []ConsoleMessage
	for _, m := range c.messages {
		if level != "" && m.Level != level {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(m.Message), needle) {
			continue
		}
		out = append(out, m)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Len reports the number of retained messages.
func (c *ConsoleLog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}
