// Package hostscene holds the host application's mutable domain state: named
// scenes of game objects plus a bounded console log. Command handlers are the
// only writers, and they run on the tick pump goroutine, so nothing here
// takes locks except the console log (which the host may append to from
// anywhere).
package hostscene

import (
	"fmt"
	"strings"
)

// Vector3 is a three-component vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Transform holds an object's placement.
type Transform struct {
	Position Vector3 `json:"position"`
	Rotation Vector3 `json:"rotation"`
	Scale    Vector3 `json:"scale"`
}

// Component is a typed property bag attached to an object.
type Component struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Material describes the material applied to an object.
type Material struct {
	Name  string     `json:"name"`
	Color [3]float64 `json:"color"`
}

// Object is one node of a scene's object tree. Hierarchy is kept flat: each
// object names its parent, and tree views are derived on demand.
type Object struct {
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Tag        string      `json:"tag,omitempty"`
	Parent     string      `json:"parent,omitempty"`
	Transform  Transform   `json:"transform"`
	Material   *Material   `json:"material,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// AddComponent attaches a component. Adding a type twice is an error.
func (o *Object) AddComponent(componentType string, properties map[string]interface{}) error {
	if componentType == "" {
		return fmt.Errorf("component type must not be empty")
	}
	for _, c := range o.Components {
		if c.Type == componentType {
			return fmt.Errorf("object %s already has component %s", o.Name, componentType)
		}
	}
	o.Components = append(o.Components, Component{Type: componentType, Properties: properties})
	return nil
}

// RemoveComponent detaches a component by type.
func (o *Object) RemoveComponent(componentType string) error {
	for i, c := range o.Components {
		if c.Type == componentType {
			o.Components = append(o.Components[:i], o.Components[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("object %s has no component %s", o.Name, componentType)
}

// Component returns the component of the given type, if attached.
func (o *Object) Component(componentType string) (*Component, bool) {
	for i := range o.Components {
		if o.Components[i].Type == componentType {
			return &o.Components[i], true
		}
	}
	return nil, false
}

// Scene is a named collection of objects in creation order.
type Scene struct {
	Name    string
	objects map[string]*Object
	order   []string
}

// NewScene creates an empty scene.
func NewScene(name string) *Scene {
	return &Scene{Name: name, objects: make(map[string]*Object)}
}

// defaultTransform is the identity placement given to new objects.
func defaultTransform() Transform {
	return Transform{Scale: Vector3{X: 1, Y: 1, Z: 1}}
}

// CreateObject adds an object with a unique name.
func (s *Scene) CreateObject(name, objectType string) (*Object, error) {
	if name == "" {
		return nil, fmt.Errorf("object name must not be empty")
	}
	if _, exists := s.objects[name]; exists {
		return nil, fmt.Errorf("object %s already exists in scene %s", name, s.Name)
	}
	if objectType == "" {
		objectType = "EMPTY"
	}
	obj := &Object{Name: name, Type: objectType, Transform: defaultTransform()}
	s.objects[name] = obj
	s.order = append(s.order, name)
	return obj, nil
}

// DeleteObject removes an object and reparents its children to the root.
func (s *Scene) DeleteObject(name string) error {
	if _, exists := s.objects[name]; !exists {
		return fmt.Errorf("object %s not found in scene %s", name, s.Name)
	}
	delete(s.objects, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	for _, obj := range s.objects {
		if obj.Parent == name {
			obj.Parent = ""
		}
	}
	return nil
}

// Get returns the object with the exact given name.
func (s *Scene) Get(name string) (*Object, bool) {
	obj, ok := s.objects[name]
	return obj, ok
}

// Reparent makes child a child of parent. An empty parent moves the child to
// the root. Cycles are rejected.
func (s *Scene) Reparent(child, parent string) error {
	obj, ok := s.objects[child]
	if !ok {
		return fmt.Errorf("object %s not found in scene %s", child, s.Name)
	}
	if parent == "" {
		obj.Parent = ""
		return nil
	}
	if _, ok := s.objects[parent]; !ok {
		return fmt.Errorf("parent %s not found in scene %s", parent, s.Name)
	}
	for cursor := parent; cursor != ""; {
		if cursor == child {
			return fmt.Errorf("reparenting %s under %s would create a cycle", child, parent)
		}
		next, ok := s.objects[cursor]
		if !ok {
			break
		}
		cursor = next.Parent
	}
	obj.Parent = parent
	return nil
}

// FindByName returns objects whose name contains the given substring,
// case-insensitively, in creation order.
func (s *Scene) FindByName(name string) []*Object {
	needle := strings.ToLower(name)
	var found []*Object
	for _, n := range s.order {
		if strings.Contains(strings.ToLower(n), needle) {
			found = append(found, s.objects[n])
		}
	}
	return found
}

// FindByTag returns objects with the exact given tag, in creation order.
func (s *Scene) FindByTag(tag string) []*Object {
	var found []*Object
	for _, n := range s.order {
		if s.objects[n].Tag == tag {
			found = append(found, s.objects[n])
		}
	}
	return found
}

// Objects returns all objects in creation order.
func (s *Scene) Objects() []*Object {
	out := make([]*Object, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.objects[n])
	}
	return out
}

// HierarchyNode is one node of the derived scene tree.
type HierarchyNode struct {
	Name     string           `json:"name"`
	Type     string           `json:"type"`
	Children []*HierarchyNode `json:"children,omitempty"`
}

// Hierarchy derives the nested object tree from the flat parent links.
func (s *Scene) Hierarchy() []*HierarchyNode {
	nodes := make(map[string]*HierarchyNode, len(s.order))
	for _, n := range s.order {
		obj := s.objects[n]
		nodes[n] = &HierarchyNode{Name: obj.Name, Type: obj.Type}
	}
	var roots []*HierarchyNode
	for _, n := range s.order {
		obj := s.objects[n]
		if obj.Parent != "" {
			if parent, ok := nodes[obj.Parent]; ok {
				parent.Children = append(parent.Children, nodes[n])
				continue
			}
		}
		roots = append(roots, nodes[n])
	}
	return roots
}

// DefaultSceneName is the scene every fresh host starts with.
const DefaultSceneName = "Untitled"

// Host is the stateful application the bridge controls: its scenes, scripts,
// editor state, the current selection, and the console log.
type Host struct {
	scenes   map[string]*Scene
	current  *Scene
	selected string
	console  *ConsoleLog

	scripts     map[string]*Script
	scriptOrder []string

	playing    bool
	paused     bool
	activeTool string
	tags       []string
	layers     []string
}

// NewHost creates a host with one empty default scene.
func NewHost() *Host {
	scene := NewScene(DefaultSceneName)
	return &Host{
		scenes:     map[string]*Scene{scene.Name: scene},
		current:    scene,
		console:    NewConsoleLog(defaultConsoleCapacity),
		scripts:    make(map[string]*Script),
		activeTool: defaultActiveTool,
		tags:       []string{BuiltinTag, "MainCamera", "Player"},
		layers:     []string{BuiltinLayer, "UI"},
	}
}

// CurrentScene returns the active scene.
func (h *Host) CurrentScene() *Scene {
	return h.current
}

// SceneNames lists all loaded scenes in no particular order.
func (h *Host) SceneNames() []string {
	names := make([]string, 0, len(h.scenes))
	for name := range h.scenes {
		names = append(names, name)
	}
	return names
}

// NewScene creates a scene and switches to it. The selection is cleared.
func (h *Host) NewScene(name string) (*Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("scene name must not be empty")
	}
	if _, exists := h.scenes[name]; exists {
		return nil, fmt.Errorf("scene %s already exists", name)
	}
	scene := NewScene(name)
	h.scenes[name] = scene
	h.current = scene
	h.selected = ""
	return scene, nil
}

// OpenScene switches to an already-loaded scene. The selection is cleared.
func (h *Host) OpenScene(name string) (*Scene, error) {
	scene, ok := h.scenes[name]
	if !ok {
		return nil, fmt.Errorf("scene %s not found", name)
	}
	h.current = scene
	h.selected = ""
	return scene, nil
}

// Select marks an object in the current scene as selected.
func (h *Host) Select(name string) (*Object, error) {
	obj, ok := h.current.Get(name)
	if !ok {
		return nil, fmt.Errorf("object %s not found in scene %s", name, h.current.Name)
	}
	h.selected = name
	return obj, nil
}

// Selected returns the selected object, if any. A selection dangling after a
// delete reads as no selection.
func (h *Host) Selected() (*Object, bool) {
	if h.selected == "" {
		return nil, false
	}
	obj, ok := h.current.Get(h.selected)
	if !ok {
		h.selected = ""
		return nil, false
	}
	return obj, true
}

// Console returns the host's console log.
func (h *Host) Console() *ConsoleLog {
	return h.console
}
