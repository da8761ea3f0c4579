package hostscene

import "fmt"

// Built-in tag and layer that every project carries and cannot lose.
const (
	BuiltinTag   = "Untagged"
	BuiltinLayer = "Default"
)

// defaultActiveTool is the manipulation tool selected on a fresh host.
const defaultActiveTool = "Move"

// EditorState is a snapshot of the host editor's mode and project settings.
type EditorState struct {
	Playing    bool     `json:"playing"`
	Paused     bool     `json:"paused"`
	ActiveTool string   `json:"activeTool"`
	Tags       []string `json:"tags"`
	Layers     []string `json:"layers"`
}

// EditorState returns a copy of the current editor state.
func (h *Host) EditorState() EditorState {
	return EditorState{
		Playing:    h.playing,
		Paused:     h.paused,
		ActiveTool: h.activeTool,
		Tags:       append([]string(nil), h.tags...),
		Layers:     append([]string(nil), h.layers...),
	}
}

// Play enters play mode.
func (h *Host) Play() error {
	if h.playing {
		return fmt.Errorf("already in play mode")
	}
	h.playing = true
	h.paused = false
	return nil
}

// Pause pauses play mode.
func (h *Host) Pause() error {
	if !h.playing {
		return fmt.Errorf("not in play mode")
	}
	if h.paused {
		return fmt.Errorf("already paused")
	}
	h.paused = true
	return nil
}

// StopPlay leaves play mode, paused or not.
func (h *Host) StopPlay() error {
	if !h.playing {
		return fmt.Errorf("not in play mode")
	}
	h.playing = false
	h.paused = false
	return nil
}

// SetActiveTool switches the active manipulation tool.
func (h *Host) SetActiveTool(name string) error {
	if name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	h.activeTool = name
	return nil
}

// AddTag defines a new tag objects can carry.
func (h *Host) AddTag(tag string) error {
	return addProjectEntry(&h.tags, tag, "tag")
}

// RemoveTag removes a tag definition. The built-in tag cannot be removed.
func (h *Host) RemoveTag(tag string) error {
	if tag == BuiltinTag {
		return fmt.Errorf("tag %s is built in and cannot be removed", tag)
	}
	return removeProjectEntry(&h.tags, tag, "tag")
}

// AddLayer defines a new layer.
func (h *Host) AddLayer(layer string) error {
	return addProjectEntry(&h.layers, layer, "layer")
}

// RemoveLayer removes a layer definition. The built-in layer cannot be
// removed.
func (h *Host) RemoveLayer(layer string) error {
	if layer == BuiltinLayer {
		return fmt.Errorf("layer %s is built in and cannot be removed", layer)
	}
	return removeProjectEntry(&h.layers, layer, "layer")
}

func addProjectEntry(entries *[]string, value, kind string) error {
	if value == "" {
		return fmt.Errorf("%s name must not be empty", kind)
	}
	for _, e := range *entries {
		if e == value {
			return fmt.Errorf("%s %s already exists", kind, value)
		}
	}
	*entries = append(*entries, value)
	return nil
}

func removeProjectEntry(entries *[]string, value, kind string) error {
	for i, e := range *entries {
		if e == value {
			*entries = append((*entries)[:i], (*entries)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s %s not found", kind, value)
}
