package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/morezero/host-bridge/pkg/bridge"
	"github.com/morezero/host-bridge/pkg/hostscene"
)

type scriptParams struct {
	Name       string `json:"name"`
	Path       string `json:"path,omitempty"`
	Contents   string `json:"contents,omitempty"`
	ScriptType string `json:"scriptType,omitempty"`
}

func createScript(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p scriptParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		script, err := host.CreateScript(p.Name, p.Path, p.Contents, p.ScriptType)
		if err != nil {
			return nil, err
		}
		host.Console().Append("info", fmt.Sprintf("created script %s", script.AssetPath()))
		return map[string]interface{}{"name": script.Name, "path": script.AssetPath()}, nil
	}
}

func readScript(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p scriptParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		script, ok := host.Script(p.Name, p.Path)
		if !ok {
			return nil, fmt.Errorf("script %s not found", p.Name)
		}
		return script, nil
	}
}

func updateScript(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p scriptParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		script, err := host.UpdateScript(p.Name, p.Path, p.Contents)
		if err != nil {
			return nil, err
		}
		host.Console().Append("info", fmt.Sprintf("updated script %s", script.AssetPath()))
		return map[string]interface{}{"name": script.Name, "path": script.AssetPath()}, nil
	}
}

func deleteScript(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		var p scriptParams
		if err := decodeParams(params, &p, false); err != nil {
			return nil, err
		}
		if err := host.DeleteScript(p.Name, p.Path); err != nil {
			return nil, err
		}
		host.Console().Append("info", fmt.Sprintf("deleted script %s", p.Name))
		return map[string]interface{}{"deleted": p.Name}, nil
	}
}

func listScripts(host *hostscene.Host) bridge.HandlerFunc {
	return func(params json.RawMessage) (interface{}, error) {
		scripts := host.Scripts()
		paths := make([]string, 0, len(scripts))
		for _, s := range scripts {
			paths = append(paths, s.AssetPath())
		}
		return map[string]interface{}{"count": len(paths), "scripts": paths}, nil
	}
}
