package handlers

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/morezero/host-bridge/pkg/bridge"
	"github.com/morezero/host-bridge/pkg/hostscene"
)

func getEditorState(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		return host.EditorState(), nil
	}
}

type playModeParams struct {
	Mode string `json:"mode"`
}

func setPlayMode(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p playModeParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		var err error
		switch strings.ToLower(p.Mode) {
		case "play":
			err = host.Play()
		case "pause":
			err = host.Pause()
		case "stop":
			err = host.StopPlay()
		default:
			return nil, fmt.Errorf("unknown play mode %q (want play, pause or stop)", p.Mode)
		}
		if err != nil {
			return nil, err
		}
		host.Console().Append("info", fmt.Sprintf("play mode: %s", strings.ToLower(p.Mode)))
		return host.EditorState(), nil
	}
}

type toolParams struct {
	Name string `json:"name"`
}

func setActiveTool(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p toolParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		if err := host.SetActiveTool(p.Name); err != nil {
			return nil, err
		}
		return map[string]interface{}{"activeTool": p.Name}, nil
	}
}

type tagParams struct {
	Tag string `json:"tag"`
}

func addTag(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p tagParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		if err := host.AddTag(p.Tag); err != nil {
			return nil, err
		}
		return map[string]interface{}{"tags": host.EditorState().Tags}, nil
	}
}

func removeTag(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p tagParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		if err := host.RemoveTag(p.Tag); err != nil {
			return nil, err
		}
		return map[string]interface{}{"tags": host.EditorState().Tags}, nil
	}
}

type layerParams struct {
	Layer string `json:"layer"`
}

func addLayer(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p layerParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		if err := host.AddLayer(p.Layer); err != nil {
			return nil, err
		}
		return map[string]interface{}{"layers": host.EditorState().Layers}, nil
	}
}

func removeLayer(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p layerParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		if err := host.RemoveLayer(p.Layer); err != nil {
			return nil, err
		}
		return map[string]interface{}{"layers": host.EditorState().Layers}, nil
	}
}

type menuItemParams struct {
	MenuPath string `json:"menuPath"`
	Action   string `json:"action,omitempty"`
}

// menuActions is the fixed menu bar the bridge can drive. Each entry maps a
// menu path to its host action.
func menuActions(host *hostscene.Host) map[string]func() error {
	return map[string]func() error{
		"Edit/Play":  host.Play,
		"Edit/Pause": host.Pause,
		"Edit/Stop":  host.StopPlay,
		"File/Save Project": func() error {
			host.Console().Append("info", "project saved")
			return nil
		},
		"GameObject/Create Empty": func() error {
			scene := host.CurrentScene()
			name := "GameObject"
			for i := 1; ; i++ {
				if _, ok := scene.Get(name); !ok {
					break
				}
				name = fmt.Sprintf("GameObject (%d)", i)
			}
			_, err := scene.CreateObject(name, "EMPTY")
			return err
		},
	}
}

func executeMenuItem(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p menuItemParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		actions := menuActions(host)

		action := strings.ToLower(p.Action)
		if action == "" {
			action = "execute"
		}
		switch action {
		case "get_available":
			paths := make([]string, 0, len(actions))
			for path := range actions {
				paths = append(paths, path)
			}
			sort.Strings(paths)
			return map[string]interface{}{"menuItems": paths}, nil
		case "execute":
		default:
			return nil, fmt.Errorf("unknown menu action %q (want execute or get_available)", p.Action)
		}

		fn, ok := actions[p.MenuPath]
		if !ok {
			return nil, fmt.Errorf("menu item %q not found", p.MenuPath)
		}
		if err := fn(); err != nil {
			return nil, err
		}
		host.Console().Append("info", fmt.Sprintf("executed menu item %s", p.MenuPath))
		return map[string]interface{}{"executed": p.MenuPath}, nil
	}
}
