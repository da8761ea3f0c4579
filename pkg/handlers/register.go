// Package handlers implements the bridge command set: scene and object
// manipulation, script assets, editor control, queries, console access, and
// the client handshake. Handlers run on the tick pump goroutine and may touch
// host state freely.
package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/morezero/host-bridge/pkg/bridge"
	"github.com/morezero/host-bridge/pkg/hostscene"
	"github.com/morezero/host-bridge/pkg/journal"
	"github.com/morezero/host-bridge/pkg/protoversion"
)

const logPrefix = "handlers:register"

// RegisterAll registers every bridge command on the registry. The journal may
// be nil, in which case GET_COMMAND_HISTORY is not registered.
func RegisterAll(reg *bridge.HandlerRegistry, host *hostscene.Host, j journal.Journal) error {
	cmds := map[string]bridge.HandlerFunc{
		"HANDSHAKE":             handleHandshake,
		"ECHO":                  handleEcho,
		"CREATE_OBJECT":         createObject(host),
		"DELETE_OBJECT":         deleteObject(host),
		"MODIFY_OBJECT":         modifyObject(host),
		"ADD_COMPONENT":         addComponent(host),
		"REMOVE_COMPONENT":      removeComponent(host),
		"SET_MATERIAL":          setMaterial(host),
		"FIND_OBJECTS_BY_NAME":  findObjectsByName(host),
		"FIND_OBJECTS_BY_TAG":   findObjectsByTag(host),
		"GET_OBJECT_PROPERTIES": getObjectProperties(host),
		"GET_HIERARCHY":         getHierarchy(host),
		"GET_SCENE_INFO":        getSceneInfo(host),
		"NEW_SCENE":             newScene(host),
		"OPEN_SCENE":            openScene(host),
		"SELECT_OBJECT":         selectObject(host),
		"GET_SELECTED_OBJECT":   getSelectedObject(host),
		"READ_CONSOLE":          readConsole(host),
		"CREATE_SCRIPT":         createScript(host),
		"READ_SCRIPT":           readScript(host),
		"UPDATE_SCRIPT":         updateScript(host),
		"DELETE_SCRIPT":         deleteScript(host),
		"LIST_SCRIPTS":          listScripts(host),
		"GET_EDITOR_STATE":      getEditorState(host),
		"SET_PLAY_MODE":         setPlayMode(host),
		"SET_ACTIVE_TOOL":       setActiveTool(host),
		"ADD_TAG":               addTag(host),
		"REMOVE_TAG":            removeTag(host),
		"ADD_LAYER":             addLayer(host),
		"REMOVE_LAYER":          removeLayer(host),
		"EXECUTE_MENU_ITEM":     executeMenuItem(host),
	}
	if j != nil {
		cmds["GET_COMMAND_HISTORY"] = getCommandHistory(j)
	}

	for name, fn := range cmds {
		if err := reg.Register(name, fn); err != nil {
			return fmt.Errorf("%s - failed to register %s: %w", logPrefix, name, err)
		}
	}
	return nil
}

// decodeParams unmarshals params into target, tolerating absent params only
// when allowEmpty is set.
func decodeParams(params json.RawMessage, target interface{}, allowEmpty bool) error {
	if len(params) == 0 || string(params) == "null" {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("params are required")
	}
	if err := json.Unmarshal(params, target); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

type handshakeParams struct {
	Version string `json:"version"`
	Client  string `json:"client,omitempty"`
}

func handleHandshake(params json.RawMessage) (interface{}, error) {
	var p handshakeParams
	if err := decodeParams(params, &p, false); err != nil {
		return nil, err
	}
	if err := protoversion.Check(p.Version); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"protocolVersion": protoversion.Version,
		"message":         "welcome",
	}, nil
}

// handleEcho returns its params unchanged, as a connectivity probe with a
// body.
func handleEcho(params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return map[string]interface{}{}, nil
	}
	var echoed interface{}
	if err := json.Unmarshal(params, &echoed); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return echoed, nil
}
