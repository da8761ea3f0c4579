package bridge

import (
	"encoding/json"
	"testing"
)

func TestSuccessEnvelope_Shape(t *testing.T) {
	envelope := SuccessEnvelope(map[string]interface{}{"x": 1, "y": "a"})

	var resp Response
	if err := json.Unmarshal([]byte(envelope), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Status != StatusSuccess {
		t.Errorf("expected status success, got %s", resp.Status)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("expected object result, got %T", resp.Result)
	}
	if result["x"] != float64(1) || result["y"] != "a" {
		t.Errorf("result not preserved: %v", result)
	}
	if resp.Error != "" || resp.Code != "" {
		t.Errorf("success envelope carries error fields: %s", envelope)
	}
}

func TestErrorEnvelope_Shape(t *testing.T) {
	envelope := ErrorEnvelope(CodeUnknownCommand, "unknown command type: NOPE")

	var resp Response
	if err := json.Unmarshal([]byte(envelope), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Status != StatusError {
		t.Errorf("expected status error, got %s", resp.Status)
	}
	if resp.Code != CodeUnknownCommand {
		t.Errorf("expected code %s, got %s", CodeUnknownCommand, resp.Code)
	}
	if resp.Error != "unknown command type: NOPE" {
		t.Errorf("unexpected error text: %s", resp.Error)
	}
}

func TestPongEnvelope_ExactBytes(t *testing.T) {
	want := `{"status":"success","result":{"message":"pong"}}`
	if pongEnvelope != want {
		t.Errorf("pong envelope drifted: %s", pongEnvelope)
	}
}

func TestMarshalEnvelope_UnserializableResult(t *testing.T) {
	envelope := marshalEnvelope(&Response{Status: StatusSuccess, Result: make(chan int)})

	var resp Response
	if err := json.Unmarshal([]byte(envelope), &resp); err != nil {
		t.Fatalf("fallback envelope is not valid JSON: %v", err)
	}
	if resp.Status != StatusError {
		t.Errorf("expected error fallback, got %s", resp.Status)
	}
	if resp.Code != CodeHandlerFailure {
		t.Errorf("expected %s, got %s", CodeHandlerFailure, resp.Code)
	}
}

func TestEnvelopeStatus(t *testing.T) {
	if got := envelopeStatus(pongEnvelope); got != StatusSuccess {
		t.Errorf("expected success, got %s", got)
	}
	if got := envelopeStatus(ErrorEnvelope(CodeEmptyCommand, "x")); got != StatusError {
		t.Errorf("expected error, got %s", got)
	}
	if got := envelopeStatus("not json"); got != StatusError {
		t.Errorf("expected error for garbage, got %s", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 50); got != "short" {
		t.Errorf("expected unchanged, got %s", got)
	}
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	got := truncate(string(long), 50)
	if len([]rune(got)) != 53 {
		t.Errorf("expected 50 runes plus ellipsis, got %d", len([]rune(got)))
	}
}

func TestSummarizeParams(t *testing.T) {
	raw := json.RawMessage(`{"name":"Cube","blob":"` + string(make([]byte, 0)) + `0123456789012345678901234567890123456789012345678901234567890123456789012345678901234567890123456789xxxx"}`)
	summary := summarizeParams(raw, 100)
	if summary == nil {
		t.Fatal("expected summary, got nil")
	}
	if summary["name"] != `"Cube"` {
		t.Errorf("expected quoted value, got %s", summary["name"])
	}
	if len(summary["blob"]) > 110 {
		t.Errorf("blob summary not truncated: %d bytes", len(summary["blob"]))
	}

	if got := summarizeParams(nil, 100); got != nil {
		t.Errorf("expected nil for empty params, got %v", got)
	}
	if got := summarizeParams(json.RawMessage(`{}`), 100); got != nil {
		t.Errorf("expected nil for empty object, got %v", got)
	}
}
