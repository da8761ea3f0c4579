package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/morezero/host-bridge/internal/config"
	"github.com/morezero/host-bridge/pkg/bridge"
	"github.com/morezero/host-bridge/pkg/handlers"
	"github.com/morezero/host-bridge/pkg/hostscene"
	"github.com/morezero/host-bridge/pkg/journal"
)

const serverTestPrefix = "server:server_test"

// newTestServer builds a Server around a running bridge on an ephemeral port.
// The host is returned too, so tests can seed scene state before issuing
// requests.
func newTestServer(t *testing.T) (*Server, *hostscene.Host) {
	t.Helper()

	host := hostscene.NewHost()
	jrnl := journal.NewMemoryJournal(100)
	reg := bridge.NewHandlerRegistry()
	if err := handlers.RegisterAll(reg, host, jrnl); err != nil {
		t.Fatalf("%s - RegisterAll failed: %v", serverTestPrefix, err)
	}

	table := bridge.NewPendingTable()
	pump := bridge.NewTickPump(table, bridge.NewDispatcher(reg), journal.NewRecorder(jrnl))
	ctrl := bridge.NewController(bridge.Options{
		Addr:         "127.0.0.1:0",
		WaitTimeout:  time.Second,
		TickInterval: 5 * time.Millisecond,
	}, table, pump)
	if err := ctrl.Start(); err != nil {
		t.Fatalf("%s - controller start failed: %v", serverTestPrefix, err)
	}
	t.Cleanup(func() { ctrl.Stop() })

	s := &Server{
		cfg:        &config.Config{HealthCheckTimeout: 5 * time.Second},
		controller: ctrl,
		registry:   reg,
		table:      table,
		jrnl:       jrnl,
		started:    time.Now().UTC(),
	}
	return s, host
}

func TestHandleHealth_Healthy(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("%s - status = %d, want 200", serverTestPrefix, rec.Code)
	}
	var h healthOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &h); err != nil {
		t.Fatalf("%s - failed to decode body: %v", serverTestPrefix, err)
	}
	if h.Status != "healthy" || !h.Checks["bridge"] {
		t.Errorf("%s - unexpected health: %+v", serverTestPrefix, h)
	}
}

func TestHandleHealth_UnhealthyWhenStopped(t *testing.T) {
	s, _ := newTestServer(t)
	s.controller.Stop()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth()(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("%s - status = %d, want 503", serverTestPrefix, rec.Code)
	}
}

func TestHandleHome(t *testing.T) {
	s, host := newTestServer(t)
	host.CurrentScene().CreateObject("Cube", "CUBE")
	host.Select("Cube")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.handleHome()(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("%s - status = %d, want 200", serverTestPrefix, rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Host Bridge", "CREATE_OBJECT", "Cube", hostscene.DefaultSceneName} {
		if !strings.Contains(body, want) {
			t.Errorf("%s - body missing %q", serverTestPrefix, want)
		}
	}
}

// Scene state is mutated on the tick goroutine; the status page must stay
// safe while commands dispatch.
func TestHandleHome_SafeDuringDispatch(t *testing.T) {
	s, _ := newTestServer(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			payload := fmt.Sprintf(`{"type":"CREATE_OBJECT","params":{"name":"Obj%d"}}`, i)
			entry := s.table.Enqueue(payload)
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			entry.Wait(ctx, 0)
			cancel()
		}
	}()

	handler := s.handleHome()
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s - status = %d, want 200", serverTestPrefix, rec.Code)
		}
	}
	<-done
}

func TestHandleHome_NotFoundForOtherPaths(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.handleHome()(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("%s - status = %d, want 404", serverTestPrefix, rec.Code)
	}
}
