package commsutil

import (
	"fmt"
	"strings"
)

// Default COMMS subjects.
const (
	SubjectCommandEvent   = "bridge.command.dispatched"
	SubjectLifecycleEvent = "bridge.lifecycle"
)

// BuildCommandSubject builds a granular dispatch event subject for one
// command type, e.g. "bridge.command.dispatched.create_object".
func BuildCommandSubject(commandType string) string {
	safe := strings.ToLower(strings.ReplaceAll(commandType, ".", "_"))
	if safe == "" {
		safe = "unknown"
	}
	return fmt.Sprintf("%s.%s", SubjectCommandEvent, safe)
}

// BuildLifecycleSubject builds a granular lifecycle subject for one phase,
// e.g. "bridge.lifecycle.started".
func BuildLifecycleSubject(phase string) string {
	return fmt.Sprintf("%s.%s", SubjectLifecycleEvent, strings.ToLower(phase))
}
