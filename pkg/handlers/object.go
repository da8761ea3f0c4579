package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/morezero/host-bridge/pkg/bridge"
	"github.com/morezero/host-bridge/pkg/hostscene"
)

type createObjectParams struct {
	Name     string             `json:"name"`
	Type     string             `json:"type,omitempty"`
	Tag      string             `json:"tag,omitempty"`
	Parent   string             `json:"parent,omitempty"`
	Position *hostscene.Vector3 `json:"position,omitempty"`
	Rotation *hostscene.Vector3 `json:"rotation,omitempty"`
	Scale    *hostscene.Vector3 `json:"scale,omitempty"`
}

func createObject(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p createObjectParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		scene := host.CurrentScene()
		obj, err := scene.CreateObject(p.Name, p.Type)
		if err != nil {
			return nil, err
		}
		obj.Tag = p.Tag
		if p.Position != nil {
			obj.Transform.Position = *p.Position
		}
		if p.Rotation != nil {
			obj.Transform.Rotation = *p.Rotation
		}
		if p.Scale != nil {
			obj.Transform.Scale = *p.Scale
		}
		if p.Parent != "" {
			if err := scene.Reparent(obj.Name, p.Parent); err != nil {
				scene.DeleteObject(obj.Name)
				return nil, err
			}
		}
		host.Console().Append("info", fmt.Sprintf("created object %s", obj.Name))
		return obj, nil
	}
}

type objectNameParams struct {
	Name string `json:"name"`
}

func deleteObject(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p objectNameParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		if err := host.CurrentScene().DeleteObject(p.Name); err != nil {
			return nil, err
		}
		host.Console().Append("info", fmt.Sprintf("deleted object %s", p.Name))
		return map[string]interface{}{"deleted": p.Name}, nil
	}
}

type modifyObjectParams struct {
	Name     string             `json:"name"`
	Tag      *string            `json:"tag,omitempty"`
	Parent   *string            `json:"parent,omitempty"`
	Position *hostscene.Vector3 `json:"position,omitempty"`
	Rotation *hostscene.Vector3 `json:"rotation,omitempty"`
	Scale    *hostscene.Vector3 `json:"scale,omitempty"`
}

func modifyObject(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p modifyObjectParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		scene := host.CurrentScene()
		obj, ok := scene.Get(p.Name)
		if !ok {
			return nil, fmt.Errorf("object %s not found in scene %s", p.Name, scene.Name)
		}
		if p.Parent != nil {
			if err := scene.Reparent(p.Name, *p.Parent); err != nil {
				return nil, err
			}
		}
		if p.Tag != nil {
			obj.Tag = *p.Tag
		}
		if p.Position != nil {
			obj.Transform.Position = *p.Position
		}
		if p.Rotation != nil {
			obj.Transform.Rotation = *p.Rotation
		}
		if p.Scale != nil {
			obj.Transform.Scale = *p.Scale
		}
		return obj, nil
	}
}

type componentParams struct {
	Name          string                 `json:"name"`
	ComponentType string                 `json:"componentType"`
	Properties    map[string]interface{} `json:"properties,omitempty"`
}

func addComponent(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p componentParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		obj, ok := host.CurrentScene().Get(p.Name)
		if !ok {
			return nil, fmt.Errorf("object %s not found", p.Name)
		}
		if err := obj.AddComponent(p.ComponentType, p.Properties); err != nil {
			return nil, err
		}
		return obj, nil
	}
}

func removeComponent(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p componentParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		obj, ok := host.CurrentScene().Get(p.Name)
		if !ok {
			return nil, fmt.Errorf("object %s not found", p.Name)
		}
		if err := obj.RemoveComponent(p.ComponentType); err != nil {
			return nil, err
		}
		return obj, nil
	}
}

type setMaterialParams struct {
	Name         string      `json:"name"`
	MaterialName string      `json:"materialName,omitempty"`
	Color        *[3]float64 `json:"color,omitempty"`
}

func setMaterial(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p setMaterialParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		obj, ok := host.CurrentScene().Get(p.Name)
		if !ok {
			return nil, fmt.Errorf("object %s not found", p.Name)
		}
		mat := obj.Material
		if mat == nil {
			mat = &hostscene.Material{Name: "Default"}
			obj.Material = mat
		}
		if p.MaterialName != "" {
			mat.Name = p.MaterialName
		}
		if p.Color != nil {
			mat.Color = *p.Color
		}
		return obj, nil
	}
}

func getObjectProperties(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p objectNameParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		obj, ok := host.CurrentScene().Get(p.Name)
		if !ok {
			return nil, fmt.Errorf("object %s not found", p.Name)
		}
		return obj, nil
	}
}

type findParams struct {
	Name string `json:"name,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

func findObjectsByName(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p findParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		if p.Name == "" {
			return nil, fmt.Errorf("name is required")
		}
		found := host.CurrentScene().FindByName(p.Name)
		return map[string]interface{}{"count": len(found), "objects": objectNames(found)}, nil
	}
}

func findObjectsByTag(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p findParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		if p.Tag == "" {
			return nil, fmt.Errorf("tag is required")
		}
		found := host.CurrentScene().FindByTag(p.Tag)
		return map[string]interface{}{"count": len(found), "objects": objectNames(found)}, nil
	}
}

func objectNames(objects []*hostscene.Object) []string {
	names := make([]string, 0, len(objects))
	for _, o := range objects {
		names = append(names, o.Name)
	}
	return names
}
