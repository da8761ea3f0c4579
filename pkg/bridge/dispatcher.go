package bridge

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
)

const (
	// echoLimit bounds the diagnostic echo of unparseable payloads.
	echoLimit = 50
	// paramLimit bounds each stringified parameter in failure diagnostics.
	paramLimit = 100
)

// Dispatcher turns one raw command payload into a response envelope string.
// It is pure and synchronous. Only the tick pump may invoke it: handler
// execution is the one place host state may be mutated, and the pump is the
// sole caller on the sole host goroutine.
type Dispatcher struct {
	registry *HandlerRegistry
}

// NewDispatcher creates a Dispatcher over the given registry.
func NewDispatcher(registry *HandlerRegistry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Execute validates, deserializes, and dispatches a raw payload, returning a
// serialized envelope. Every failure mode is converted to an error envelope
// here; nothing escapes as an exception, and the caller always gets valid
// JSON to write back.
func (d *Dispatcher) Execute(rawPayload string) string {
	trimmed := strings.TrimSpace(rawPayload)
	if trimmed == "" {
		return ErrorEnvelope(CodeEmptyCommand, "no command payload received")
	}

	// A bare ping is answered by the connection loop; this duplicate check
	// keeps a probe that does reach the dispatcher from being rejected as
	// invalid JSON.
	if trimmed == PingToken {
		return pongEnvelope
	}

	if !looksLikeJSON(trimmed) || !json.Valid([]byte(trimmed)) {
		return ErrorEnvelope(CodeInvalidFormat,
			fmt.Sprintf("payload is not a valid JSON object or array: %s", truncate(trimmed, echoLimit)))
	}

	var req CommandRequest
	if err := json.Unmarshal([]byte(trimmed), &req); err != nil {
		return ErrorEnvelope(CodeMalformedCommand,
			fmt.Sprintf("payload does not describe a command: %v", err))
	}

	if req.Type == "" {
		return ErrorEnvelope(CodeMissingCommandType, "command type is missing or empty")
	}

	handler, ok := d.registry.Lookup(req.Type)
	if !ok {
		return ErrorEnvelope(CodeUnknownCommand, fmt.Sprintf("unknown command type: %s", req.Type))
	}

	result, trace, err := invoke(handler, req.Params)
	if err != nil {
		return marshalEnvelope(&Response{
			Status:  StatusError,
			Error:   err.Error(),
			Code:    CodeHandlerFailure,
			Command: req.Type,
			Params:  summarizeParams(req.Params, paramLimit),
			Trace:   trace,
		})
	}
	return SuccessEnvelope(result)
}

// invoke runs a handler, converting a panic into an error plus a stack trace.
func invoke(handler HandlerFunc, params json.RawMessage) (result interface{}, trace string, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			trace = string(debug.Stack())
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	result, err = handler(params)
	return result, "", err
}

// looksLikeJSON reports whether s starts like a JSON object or array. Scalar
// JSON ("42", `"x"`) is rejected up front; the protocol carries objects.
func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
