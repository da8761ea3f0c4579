package hostscene

import (
	"testing"
)

func TestCreateObject(t *testing.T) {
	s := NewScene("main")

	obj, err := s.CreateObject("Cube1", "CUBE")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if obj.Type != "CUBE" {
		t.Errorf("expected type CUBE, got %s", obj.Type)
	}
	if obj.Transform.Scale != (Vector3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("expected identity scale, got %+v", obj.Transform.Scale)
	}

	if _, err := s.CreateObject("Cube1", "CUBE"); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
	if _, err := s.CreateObject("", "CUBE"); err == nil {
		t.Error("expected empty name to be rejected")
	}

	empty, err := s.CreateObject("Holder", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if empty.Type != "EMPTY" {
		t.Errorf("expected default type EMPTY, got %s", empty.Type)
	}
}

func TestDeleteObjectReparentsChildren(t *testing.T) {
	s := NewScene("main")
	s.CreateObject("Parent", "EMPTY")
	s.CreateObject("Child", "CUBE")
	if err := s.Reparent("Child", "Parent"); err != nil {
		t.Fatalf("reparent failed: %v", err)
	}

	if err := s.DeleteObject("Parent"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.DeleteObject("Parent"); err == nil {
		t.Error("expected second delete to fail")
	}

	child, ok := s.Get("Child")
	if !ok {
		t.Fatal("child should survive parent deletion")
	}
	if child.Parent != "" {
		t.Errorf("expected child at root, got parent %q", child.Parent)
	}
}

func TestReparentRejectsCycles(t *testing.T) {
	s := NewScene("main")
	s.CreateObject("A", "EMPTY")
	s.CreateObject("B", "EMPTY")
	s.CreateObject("C", "EMPTY")
	s.Reparent("B", "A")
	s.Reparent("C", "B")

	if err := s.Reparent("A", "C"); err == nil {
		t.Error("expected cycle to be rejected")
	}
	if err := s.Reparent("A", "A"); err == nil {
		t.Error("expected self-parenting to be rejected")
	}
	if err := s.Reparent("C", ""); err != nil {
		t.Errorf("moving to root failed: %v", err)
	}
}

func TestFindByNameAndTag(t *testing.T) {
	s := NewScene("main")
	s.CreateObject("PlayerOne", "CAPSULE")
	s.CreateObject("playerTwo", "CAPSULE")
	s.CreateObject("Enemy", "CUBE")
	enemy, _ := s.Get("Enemy")
	enemy.Tag = "hostile"

	byName := s.FindByName("player")
	if len(byName) != 2 {
		t.Fatalf("expected 2 name matches, got %d", len(byName))
	}
	if byName[0].Name != "PlayerOne" || byName[1].Name != "playerTwo" {
		t.Errorf("expected creation order, got %s then %s", byName[0].Name, byName[1].Name)
	}

	byTag := s.FindByTag("hostile")
	if len(byTag) != 1 || byTag[0].Name != "Enemy" {
		t.Errorf("unexpected tag matches: %+v", byTag)
	}
	if got := s.FindByTag("HOSTILE"); len(got) != 0 {
		t.Error("tag matching should be exact")
	}
}

func TestHierarchy(t *testing.T) {
	s := NewScene("main")
	s.CreateObject("Root", "EMPTY")
	s.CreateObject("Arm", "EMPTY")
	s.CreateObject("Hand", "CUBE")
	s.CreateObject("Loose", "SPHERE")
	s.Reparent("Arm", "Root")
	s.Reparent("Hand", "Arm")

	roots := s.Hierarchy()
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].Name != "Root" || roots[1].Name != "Loose" {
		t.Errorf("unexpected roots: %s, %s", roots[0].Name, roots[1].Name)
	}
	if len(roots[0].Children) != 1 || roots[0].Children[0].Name != "Arm" {
		t.Fatalf("unexpected children of Root: %+v", roots[0].Children)
	}
	if len(roots[0].Children[0].Children) != 1 || roots[0].Children[0].Children[0].Name != "Hand" {
		t.Errorf("unexpected grandchildren: %+v", roots[0].Children[0].Children)
	}
}

func TestComponents(t *testing.T) {
	s := NewScene("main")
	obj, _ := s.CreateObject("Cube", "CUBE")

	if err := obj.AddComponent("Rigidbody", map[string]interface{}{"mass": 2.5}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := obj.AddComponent("Rigidbody", nil); err == nil {
		t.Error("expected duplicate component to be rejected")
	}
	if err := obj.AddComponent("", nil); err == nil {
		t.Error("expected empty component type to be rejected")
	}

	c, ok := obj.Component("Rigidbody")
	if !ok || c.Properties["mass"] != 2.5 {
		t.Errorf("unexpected component: %+v ok=%v", c, ok)
	}

	if err := obj.RemoveComponent("Rigidbody"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := obj.RemoveComponent("Rigidbody"); err == nil {
		t.Error("expected second remove to fail")
	}
}

func TestHostScenesAndSelection(t *testing.T) {
	h := NewHost()
	if h.CurrentScene().Name != DefaultSceneName {
		t.Fatalf("expected default scene, got %s", h.CurrentScene().Name)
	}

	h.CurrentScene().CreateObject("Cube", "CUBE")
	if _, err := h.Select("Cube"); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if _, err := h.Select("Missing"); err == nil {
		t.Error("expected selecting a missing object to fail")
	}
	if sel, ok := h.Selected(); !ok || sel.Name != "Cube" {
		t.Errorf("unexpected selection: %+v ok=%v", sel, ok)
	}

	// Deleting the selected object clears the selection.
	h.CurrentScene().DeleteObject("Cube")
	if _, ok := h.Selected(); ok {
		t.Error("selection should be cleared after delete")
	}

	if _, err := h.NewScene("level2"); err != nil {
		t.Fatalf("new scene failed: %v", err)
	}
	if h.CurrentScene().Name != "level2" {
		t.Errorf("expected switch to level2, got %s", h.CurrentScene().Name)
	}
	if _, err := h.NewScene("level2"); err == nil {
		t.Error("expected duplicate scene name to be rejected")
	}
	if len(h.SceneNames()) != 2 {
		t.Errorf("expected 2 scenes, got %v", h.SceneNames())
	}

	if _, err := h.OpenScene(DefaultSceneName); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := h.OpenScene("nope"); err == nil {
		t.Error("expected opening an unknown scene to fail")
	}
}

func TestConsoleLog(t *testing.T) {
	c := NewConsoleLog(3)
	c.Append("info", "first")
	c.Append("error", "boom in loader")
	c.Append("info", "second")
	c.Append("info", "third")

	if c.Len() != 3 {
		t.Fatalf("expected capacity eviction to 3, got %d", c.Len())
	}
	all := c.Read("", "", 0)
	if len(all) != 3 || all[0].Message != "boom in loader" {
		t.Errorf("unexpected retained messages: %+v", all)
	}

	errs := c.Read("error", "", 0)
	if len(errs) != 1 || errs[0].Message != "boom in loader" {
		t.Errorf("unexpected level filter result: %+v", errs)
	}

	found := c.Read("", "LOADER", 0)
	if len(found) != 1 {
		t.Errorf("search should be case-insensitive, got %+v", found)
	}

	limited := c.Read("info", "", 1)
	if len(limited) != 1 || limited[0].Message != "third" {
		t.Errorf("limit should keep the most recent, got %+v", limited)
	}
}
