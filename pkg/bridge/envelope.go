// Package bridge implements the command bridge core: a loopback TCP listener,
// the pending command table shared with the host's tick, the command
// dispatcher, the tick pump that drains the table once per host tick, and the
// lifecycle controller that ties them together.
package bridge

import (
	"encoding/json"
	"fmt"
)

// Error codes carried in the "code" field of error envelopes.
const (
	CodeEmptyCommand       = "EMPTY_COMMAND"
	CodeInvalidFormat      = "INVALID_FORMAT"
	CodeMalformedCommand   = "MALFORMED_COMMAND"
	CodeMissingCommandType = "MISSING_COMMAND_TYPE"
	CodeUnknownCommand     = "UNKNOWN_COMMAND"
	CodeHandlerFailure     = "HANDLER_FAILURE"
	CodeCommandTimeout     = "COMMAND_TIMEOUT"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// PingToken is the bare liveness probe. It is answered by the connection loop
// itself, never routed through the pending table or the dispatcher.
const PingToken = "ping"

// pongEnvelope is the exact liveness reply.
const pongEnvelope = `{"status":"success","result":{"message":"pong"}}`

// CommandRequest is the JSON envelope for an incoming command. Params are
// handler-specific and validated by the handler, not here.
type CommandRequest struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

// Response is the JSON envelope written back for every command. Diagnostic
// fields (code, command, params, trace) appear only on errors.
type Response struct {
	Status  string            `json:"status"`
	Result  interface{}       `json:"result,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Command string            `json:"command,omitempty"`
	Params  map[string]string `json:"params,omitempty"`
	Trace   string            `json:"trace,omitempty"`
}

// SuccessEnvelope serializes a success response wrapping result.
func SuccessEnvelope(result interface{}) string {
	return marshalEnvelope(&Response{Status: StatusSuccess, Result: result})
}

// ErrorEnvelope serializes a minimal error response.
func ErrorEnvelope(code, message string) string {
	return marshalEnvelope(&Response{Status: StatusError, Error: message, Code: code})
}

// marshalEnvelope serializes a response, falling back to a hand-built error
// envelope if the response itself cannot be serialized (e.g. a handler
// returned a channel). The caller always gets valid JSON.
func marshalEnvelope(resp *Response) string {
	data, err := json.Marshal(resp)
	if err != nil {
		fallback := &Response{
			Status:  StatusError,
			Error:   fmt.Sprintf("response not serializable: %v", err),
			Code:    CodeHandlerFailure,
			Command: resp.Command,
		}
		if data, err = json.Marshal(fallback); err != nil {
			return `{"status":"error","error":"response not serializable","code":"HANDLER_FAILURE"}`
		}
	}
	return string(data)
}

// envelopeStatus extracts the status field from a serialized envelope.
func envelopeStatus(envelope string) string {
	var probe struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal([]byte(envelope), &probe); err != nil {
		return StatusError
	}
	return probe.Status
}

// truncate shortens s to at most n runes for diagnostic echoes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// summarizeParams builds a per-parameter diagnostic summary: name plus a
// truncated stringified value. Large payloads are never echoed whole.
func summarizeParams(raw json.RawMessage, limit int) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return map[string]string{"_raw": truncate(string(raw), limit)}
	}
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(fields))
	for name, value := range fields {
		out[name] = truncate(string(value), limit)
	}
	return out
}
