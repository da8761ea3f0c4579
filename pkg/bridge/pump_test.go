package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// countingHost tracks handler invocations keyed by a request-supplied nonce.
type countingHost struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingHost() *countingHost {
	return &countingHost{counts: make(map[string]int)}
}

func (h *countingHost) handle(params json.RawMessage) (interface{}, error) {
	var p struct {
		Nonce string `json:"nonce"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.counts[p.Nonce]++
	h.mu.Unlock()
	return map[string]string{"nonce": p.Nonce}, nil
}

func TestTick_DispatchesEachEntryExactlyOnce(t *testing.T) {
	table := NewPendingTable()
	reg := NewHandlerRegistry()
	host := newCountingHost()
	if err := reg.Register("COUNT", host.handle); err != nil {
		t.Fatalf("register: %v", err)
	}
	pump := NewTickPump(table, NewDispatcher(reg))

	const n = 40
	entries := make([]*PendingEntry, 0, n)
	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := table.Enqueue(fmt.Sprintf(`{"type":"COUNT","params":{"nonce":"n%d"}}`, i))
			mu.Lock()
			entries = append(entries, e)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if got := pump.Tick(context.Background()); got != n {
		t.Fatalf("expected %d processed, got %d", n, got)
	}

	for _, e := range entries {
		envelope, err := e.Wait(context.Background(), time.Second)
		if err != nil {
			t.Fatalf("entry %s unfulfilled: %v", e.ID, err)
		}
		if envelopeStatus(envelope) != StatusSuccess {
			t.Errorf("entry %s failed: %s", e.ID, envelope)
		}
	}

	host.mu.Lock()
	defer host.mu.Unlock()
	if len(host.counts) != n {
		t.Fatalf("expected %d distinct nonces, got %d", n, len(host.counts))
	}
	for nonce, count := range host.counts {
		if count != 1 {
			t.Errorf("nonce %s invoked %d times", nonce, count)
		}
	}

	// A second tick with an empty table dispatches nothing.
	if got := pump.Tick(context.Background()); got != 0 {
		t.Errorf("expected empty drain, processed %d", got)
	}
}

func TestTick_FailureIsolation(t *testing.T) {
	table := NewPendingTable()
	reg := NewHandlerRegistry()
	if err := reg.Register("ALWAYS_FAILS", func(json.RawMessage) (interface{}, error) {
		return nil, errors.New("always fails")
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("ALWAYS_SUCCEEDS", func(json.RawMessage) (interface{}, error) {
		return "ok", nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	pump := NewTickPump(table, NewDispatcher(reg))

	failing := table.Enqueue(`{"type":"ALWAYS_FAILS","params":{}}`)
	healthy := table.Enqueue(`{"type":"ALWAYS_SUCCEEDS","params":{}}`)
	pump.Tick(context.Background())

	failEnv, err := failing.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("failing entry unfulfilled: %v", err)
	}
	var failResp Response
	if err := json.Unmarshal([]byte(failEnv), &failResp); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if failResp.Code != CodeHandlerFailure {
		t.Errorf("expected %s, got %s", CodeHandlerFailure, failResp.Code)
	}

	okEnv, err := healthy.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("healthy entry unfulfilled: %v", err)
	}
	if envelopeStatus(okEnv) != StatusSuccess {
		t.Errorf("healthy command affected by failing neighbor: %s", okEnv)
	}
}

func TestTick_PanickingHandlerDoesNotStopBatch(t *testing.T) {
	table := NewPendingTable()
	reg := NewHandlerRegistry()
	if err := reg.Register("PANICS", func(json.RawMessage) (interface{}, error) {
		panic("tick must survive this")
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("OK", func(json.RawMessage) (interface{}, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	pump := NewTickPump(table, NewDispatcher(reg))

	bad := table.Enqueue(`{"type":"PANICS"}`)
	good := table.Enqueue(`{"type":"OK"}`)
	pump.Tick(context.Background())

	badEnv, err := bad.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("panicking entry unfulfilled: %v", err)
	}
	if envelopeStatus(badEnv) != StatusError {
		t.Errorf("expected error envelope for panic, got %s", badEnv)
	}
	goodEnv, err := good.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("good entry unfulfilled: %v", err)
	}
	if envelopeStatus(goodEnv) != StatusSuccess {
		t.Errorf("expected success after panic neighbor, got %s", goodEnv)
	}
}

type recordingObserver struct {
	mu   sync.Mutex
	recs []DispatchRecord
}

func (o *recordingObserver) CommandDispatched(_ context.Context, rec DispatchRecord) {
	o.mu.Lock()
	o.recs = append(o.recs, rec)
	o.mu.Unlock()
}

type panickyObserver struct{}

func (panickyObserver) CommandDispatched(context.Context, DispatchRecord) {
	panic("observer bug")
}

func TestTick_ObserversSeeEveryDispatch(t *testing.T) {
	table := NewPendingTable()
	reg := NewHandlerRegistry()
	if err := reg.Register("OK", func(json.RawMessage) (interface{}, error) { return "fine", nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	obs := &recordingObserver{}
	pump := NewTickPump(table, NewDispatcher(reg), panickyObserver{}, obs)

	entry := table.Enqueue(`{"type":"OK","params":{}}`)
	table.Enqueue(`{"type":"MISSING"}`)
	pump.Tick(context.Background())

	if _, err := entry.Wait(context.Background(), time.Second); err != nil {
		t.Fatalf("entry unfulfilled despite panicking observer: %v", err)
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(obs.recs))
	}
	if obs.recs[0].Command != "OK" || obs.recs[0].Status != StatusSuccess {
		t.Errorf("unexpected first record: %+v", obs.recs[0])
	}
	if obs.recs[1].Command != "MISSING" || obs.recs[1].Status != StatusError {
		t.Errorf("unexpected second record: %+v", obs.recs[1])
	}
	if obs.recs[0].Tick != obs.recs[1].Tick {
		t.Errorf("expected same tick for one batch, got %d and %d", obs.recs[0].Tick, obs.recs[1].Tick)
	}
	if pump.Ticks() != 1 {
		t.Errorf("expected 1 tick, got %d", pump.Ticks())
	}
}
