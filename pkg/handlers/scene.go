package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/morezero/host-bridge/pkg/bridge"
	"github.com/morezero/host-bridge/pkg/hostscene"
	"github.com/morezero/host-bridge/pkg/journal"
)

func getHierarchy(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		scene := host.CurrentScene()
		return map[string]interface{}{
			"scene":     scene.Name,
			"hierarchy": scene.Hierarchy(),
		}, nil
	}
}

func getSceneInfo(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		scene := host.CurrentScene()
		info := map[string]interface{}{
			"name":        scene.Name,
			"objectCount": len(scene.Objects()),
			"scenes":      host.SceneNames(),
		}
		if sel, ok := host.Selected(); ok {
			info["selected"] = sel.Name
		}
		return info, nil
	}
}

type sceneNameParams struct {
	Name string `json:"name"`
}

func newScene(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p sceneNameParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		scene, err := host.NewScene(p.Name)
		if err != nil {
			return nil, err
		}
		host.Console().Append("info", fmt.Sprintf("created scene %s", scene.Name))
		return map[string]interface{}{"name": scene.Name, "objectCount": 0}, nil
	}
}

func openScene(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p sceneNameParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		scene, err := host.OpenScene(p.Name)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"name": scene.Name, "objectCount": len(scene.Objects())}, nil
	}
}

func selectObject(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p objectNameParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		obj, err := host.Select(p.Name)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"selected": obj.Name}, nil
	}
}

func getSelectedObject(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		obj, ok := host.Selected()
		if !ok {
			return map[string]interface{}{"selected": nil}, nil
		}
		return obj, nil
	}
}

type readConsoleParams struct {
	Level  string `json:"level,omitempty"`
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

func readConsole(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p readConsoleParams
		if err := decodeParams(params, &p, true); err != nil {
			return nil, err
		}
		messages := host.Console().Read(p.Level, p.Search, p.Limit)
		return map[string]interface{}{"count": len(messages), "messages": messages}, nil
	}
}

type historyParams struct {
	Limit int `json:"limit,omitempty"`
}

func getCommandHistory(j journal.Journal) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p historyParams
		if err := decodeParams(params, &p, true); err != nil {
			return nil, err
		}
		records, err := j.Tail(context.Background(), p.Limit)
		if err != nil {
			return nil, fmt.Errorf("failed to read command history: %w", err)
		}
		return map[string]interface{}{"count": len(records), "records": records}, nil
	}
}
