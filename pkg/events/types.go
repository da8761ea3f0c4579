// Package events defines event types and publisher interfaces for bridge
// dispatch and lifecycle events.
package events

// CommandDispatchedEvent is emitted after a command finishes dispatch.
type CommandDispatchedEvent struct {
	ID         string `json:"id"`
	Command    string `json:"command"`
	Status     string `json:"status"`
	Tick       uint64 `json:"tick"`
	DurationUS int64  `json:"durationUs"`
	Timestamp  string `json:"timestamp"`
}

// Lifecycle phases.
const (
	PhaseStarted  = "started"
	PhaseStopping = "stopping"
	PhaseStopped  = "stopped"
)

// LifecycleEvent is emitted when the bridge starts or stops.
type LifecycleEvent struct {
	Phase     string `json:"phase"`
	Addr      string `json:"addr,omitempty"`
	Timestamp string `json:"timestamp"`
}
