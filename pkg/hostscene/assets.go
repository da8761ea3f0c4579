package hostscene

import (
	"fmt"
	"path"
	"strings"
)

// DefaultScriptDir is where scripts live when no path is given.
const DefaultScriptDir = "Assets"

// Script is a named text asset in the host's project. Scripts live outside
// any scene and survive scene switches.
type Script struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Type    string `json:"type,omitempty"`
	Content string `json:"content,omitempty"`
}

// AssetPath returns the script's project-relative file path.
func (s *Script) AssetPath() string {
	return path.Join(s.Path, s.Name+".cs")
}

// scriptKey normalizes (name, dir) into the map key scripts are stored under.
func scriptKey(name, dir string) string {
	return path.Join(dir, name)
}

func validScriptName(name string) error {
	if name == "" {
		return fmt.Errorf("script name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("script name %s must not contain path elements", name)
	}
	return nil
}

// CreateScript stores a new script. Dir defaults to DefaultScriptDir; a
// script already at that path is an error.
func (h *Host) CreateScript(name, dir, content, scriptType string) (*Script, error) {
	if err := validScriptName(name); err != nil {
		return nil, err
	}
	if dir == "" {
		dir = DefaultScriptDir
	}
	key := scriptKey(name, dir)
	if _, exists := h.scripts[key]; exists {
		return nil, fmt.Errorf("script %s already exists at %s", name, dir)
	}
	script := &Script{Name: name, Path: dir, Type: scriptType, Content: content}
	h.scripts[key] = script
	h.scriptOrder = append(h.scriptOrder, key)
	return script, nil
}

// Script looks up a script by name and dir (DefaultScriptDir when empty).
func (h *Host) Script(name, dir string) (*Script, bool) {
	if dir == "" {
		dir = DefaultScriptDir
	}
	script, ok := h.scripts[scriptKey(name, dir)]
	return script, ok
}

// UpdateScript replaces an existing script's content.
func (h *Host) UpdateScript(name, dir, content string) (*Script, error) {
	script, ok := h.Script(name, dir)
	if !ok {
		return nil, fmt.Errorf("script %s not found", name)
	}
	script.Content = content
	return script, nil
}

// DeleteScript removes a script.
func (h *Host) DeleteScript(name, dir string) error {
	if dir == "" {
		dir = DefaultScriptDir
	}
	key := scriptKey(name, dir)
	if _, ok := h.scripts[key]; !ok {
		return fmt.Errorf("script %s not found", name)
	}
	delete(h.scripts, key)
	for i, k := range h.scriptOrder {
		if k == key {
			h.scriptOrder = append(h.scriptOrder[:i], h.scriptOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Scripts returns all scripts in creation order.
func (h *Host) Scripts() []*Script {
	out := make([]*Script, 0, len(h.scriptOrder))
	for _, key := range h.scriptOrder {
		out = append(out, h.scripts[key])
	}
	return out
}
