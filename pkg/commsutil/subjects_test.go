package commsutil

import "testing"

func TestBuildCommandSubject(t *testing.T) {
	tests := []struct {
		commandType string
		want        string
	}{
		{"CREATE_OBJECT", "bridge.command.dispatched.create_object"},
		{"ping", "bridge.command.dispatched.ping"},
		{"scene.reload", "bridge.command.dispatched.scene_reload"},
		{"", "bridge.command.dispatched.unknown"},
	}
	for _, tt := range tests {
		if got := BuildCommandSubject(tt.commandType); got != tt.want {
			t.Errorf("BuildCommandSubject(%q) = %q, want %q", tt.commandType, got, tt.want)
		}
	}
}

func TestBuildLifecycleSubject(t *testing.T) {
	if got := BuildLifecycleSubject("STARTED"); got != "bridge.lifecycle.started" {
		t.Errorf("BuildLifecycleSubject = %q", got)
	}
}
