// Package server orchestrates all components: bridge listener, tick pump,
// command handlers, journal, COMMS events, HTTP status page.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	comms "github.com/nats-io/nats.go"

	"github.com/morezero/host-bridge/internal/config"
	"github.com/morezero/host-bridge/pkg/bridge"
	"github.com/morezero/host-bridge/pkg/commsutil"
	"github.com/morezero/host-bridge/pkg/events"
	"github.com/morezero/host-bridge/pkg/handlers"
	"github.com/morezero/host-bridge/pkg/hostscene"
	"github.com/morezero/host-bridge/pkg/journal"
	"github.com/morezero/host-bridge/pkg/protoversion"
)

const logPrefix = "server:server"

// Server is the host-bridge orchestrator.
type Server struct {
	cfg        *config.Config
	nc         *comms.Conn
	pool       *pgxpool.Pool
	httpServer *http.Server
	controller *bridge.Controller
	registry   *bridge.HandlerRegistry
	table      *bridge.PendingTable
	jrnl       journal.Journal
	started    time.Time
}

// SetupLogging configures the default slog logger from the config level.
func SetupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

// Run starts the server, blocks until shutdown signal, then cleans up.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	SetupLogging(cfg.LogLevel)

	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("%s - invalid config: %w", logPrefix, err)
	}

	slog.Info(fmt.Sprintf("%s - Starting host-bridge (protocol %s)", logPrefix, protoversion.Version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Server{cfg: cfg, started: time.Now().UTC()}

	// Step 1: Command journal (Postgres when configured, in-memory otherwise)
	var jrnl journal.Journal
	if cfg.DatabaseURL != "" {
		pool, err := journal.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("%s - failed to connect to database: %w", logPrefix, err)
		}
		s.pool = pool

		if cfg.RunMigrations {
			migrations, err := journal.LoadMigrationFiles(cfg.MigrationPath)
			if err != nil {
				pool.Close()
				return fmt.Errorf("%s - failed to load migrations: %w", logPrefix, err)
			}
			if err := journal.RunMigrations(ctx, pool, migrations); err != nil {
				pool.Close()
				return fmt.Errorf("%s - failed to run migrations: %w", logPrefix, err)
			}
		}
		jrnl = journal.NewPGJournal(pool)
		slog.Info(fmt.Sprintf("%s - Using Postgres command journal", logPrefix))
	} else {
		jrnl = journal.NewMemoryJournal(cfg.JournalLimit)
		slog.Info(fmt.Sprintf("%s - Using in-memory command journal (limit %d)", logPrefix, cfg.JournalLimit))
	}
	s.jrnl = jrnl

	// Step 2: Event publisher (COMMS when configured)
	var publisher events.EventPublisher = &events.NoOpPublisher{}
	if cfg.COMMSURL != "" {
		nc, err := commsutil.Connect(cfg.COMMSURL, cfg.COMMSName)
		if err != nil {
			s.closePool()
			return fmt.Errorf("%s - failed to connect to COMMS: %w", logPrefix, err)
		}
		s.nc = nc
		publisherOpts := &events.CommsPublisherOpts{}
		if cfg.EventSubject != "" {
			publisherOpts.GlobalCommandSubject = cfg.EventSubject
		}
		publisher = events.NewCommsPublisher(nc, publisherOpts)
	}

	// Step 3: Host state and command handlers
	host := hostscene.NewHost()
	reg := bridge.NewHandlerRegistry()
	if err := handlers.RegisterAll(reg, host, jrnl); err != nil {
		s.closeComms()
		s.closePool()
		return fmt.Errorf("%s - failed to register handlers: %w", logPrefix, err)
	}
	s.registry = reg
	slog.Info(fmt.Sprintf("%s - Registered %d commands", logPrefix, len(reg.Names())))

	// Step 4: Bridge controller
	table := bridge.NewPendingTable()
	s.table = table
	pump := bridge.NewTickPump(table, bridge.NewDispatcher(reg),
		journal.NewRecorder(jrnl), events.NewObserver(publisher))
	ctrl := bridge.NewController(bridge.Options{
		Addr:         cfg.BridgeAddr(),
		ReadLimit:    cfg.ReadLimit,
		WaitTimeout:  cfg.PendingTimeout,
		TickInterval: cfg.TickInterval,
	}, table, pump)
	if err := ctrl.Start(); err != nil {
		s.closeComms()
		s.closePool()
		return fmt.Errorf("%s - failed to start bridge: %w", logPrefix, err)
	}
	s.controller = ctrl
	bridgeAddr := ctrl.Addr().String()
	slog.Info(fmt.Sprintf("%s - Bridge listening on %s", logPrefix, bridgeAddr))

	publisher.PublishLifecycle(ctx, &events.LifecycleEvent{
		Phase:     events.PhaseStarted,
		Addr:      bridgeAddr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	// Step 5: HTTP status server
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome())
	mux.HandleFunc("/health", s.handleHealth())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	s.httpServer = &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP status server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - Host-bridge is ready", logPrefix))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	publisher.PublishLifecycle(ctx, &events.LifecycleEvent{
		Phase:     events.PhaseStopping,
		Addr:      bridgeAddr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	// Graceful shutdown
	ctrl.Stop()
	s.httpServer.Shutdown(ctx)
	publisher.PublishLifecycle(ctx, &events.LifecycleEvent{
		Phase:     events.PhaseStopped,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	s.closeComms()
	s.closePool()

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

func (s *Server) closeComms() {
	if s.nc != nil {
		s.nc.Drain()
	}
}

func (s *Server) closePool() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// healthOutput is the /health response body.
type healthOutput struct {
	Status    string          `json:"status"`
	Checks    map[string]bool `json:"checks"`
	Timestamp string          `json:"timestamp"`
}

// health checks the listener and optional backends.
func (s *Server) health(ctx context.Context) *healthOutput {
	checks := map[string]bool{
		"bridge": s.controller != nil && s.controller.Running(),
	}
	if s.pool != nil {
		checks["database"] = s.pool.Ping(ctx) == nil
	}
	if s.nc != nil {
		checks["comms"] = s.nc.IsConnected()
	}

	status := "healthy"
	for _, ok := range checks {
		if !ok {
			status = "unhealthy"
			break
		}
	}
	return &healthOutput{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
		defer cancel()
		h := s.health(ctx)
		w.Header().Set("Content-Type", "application/json")
		if h.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(h)
	}
}

// homePageTemplate is the HTML for the bridge status page (white bg, black/blue text).
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Host Bridge</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    a { color: #0066cc; }
    h1, h2, h3 { color: #0066cc; }
    .status-healthy { color: #0066cc; font-weight: bold; }
    .status-unhealthy { color: #cc0000; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; }
    .stat { font-weight: bold; color: #0066cc; }
    .meta { color: #333; font-size: 0.9rem; margin-top: 1rem; }
    section { margin-bottom: 2rem; }
    .error { color: #cc0000; }
  </style>
</head>
<body>
  <h1>Host Bridge</h1>
  <p class="meta">Bridge health, scene state, and recent commands.</p>

  <section>
    <h2>Health</h2>
    <p>Status: <span class="status-{{.Health.Status}}">{{.Health.Status}}</span></p>
    <p>Listening on: <span class="stat">{{.Addr}}</span> (protocol {{.Protocol}})</p>
    <p>Uptime: {{.Uptime}}</p>
    <p>Ticks: <span class="stat">{{.Ticks}}</span></p>
  </section>

  <section>
    <h2>Scene</h2>
    {{if .SceneError}}
    <p class="error">Could not load scene state: {{.SceneError}}</p>
    {{else}}
    <p>Current scene: <span class="stat">{{.SceneName}}</span> ({{.ObjectCount}} objects)</p>
    {{if .Selected}}<p>Selected: {{.Selected}}</p>{{end}}
    {{end}}
  </section>

  <section>
    <h2>Commands</h2>
    <p>{{len .Commands}} commands registered.</p>
    <table>
      <thead><tr><th>Command</th></tr></thead>
      <tbody>
        {{range .Commands}}<tr><td>{{.}}</td></tr>{{end}}
      </tbody>
    </table>
  </section>

  <section>
    <h2>Recent dispatches</h2>
    {{if .HistoryError}}
    <p class="error">Could not load command history: {{.HistoryError}}</p>
    {{else if not .History}}
    <p>No commands dispatched yet.</p>
    {{else}}
    <table>
      <thead>
        <tr><th>ID</th><th>Command</th><th>Status</th><th>Tick</th><th>At</th></tr>
      </thead>
      <tbody>
        {{range .History}}
        <tr>
          <td>{{.ID}}</td>
          <td>{{.Command}}</td>
          <td>{{.Status}}</td>
          <td>{{.Tick}}</td>
          <td>{{.At}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
  </section>
</body>
</html>
`

// homeData is the data passed to the status page template.
type homeData struct {
	Health       *healthOutput
	Addr         string
	Protocol     string
	Uptime       string
	Ticks        uint64
	SceneName    string
	ObjectCount  int
	Selected     string
	SceneError   string
	Commands     []string
	History      []journal.Record
	HistoryError string
}

// sceneSnapshotResult is the subset of the GET_SCENE_INFO result the status
// page renders.
type sceneSnapshotResult struct {
	Name        string `json:"name"`
	ObjectCount int    `json:"objectCount"`
	Selected    string `json:"selected"`
}

// sceneSnapshot queries scene state through the pending table, so the read
// runs on the tick goroutine like every other command. The wait is bounded by
// ctx; a stalled tick degrades the page, never the host.
func (s *Server) sceneSnapshot(ctx context.Context) (*sceneSnapshotResult, error) {
	payload, err := json.Marshal(&bridge.CommandRequest{Type: "GET_SCENE_INFO"})
	if err != nil {
		return nil, fmt.Errorf("%s - marshal scene query: %w", logPrefix, err)
	}
	entry := s.table.Enqueue(string(payload))
	envelope, err := entry.Wait(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("%s - scene query unanswered: %w", logPrefix, err)
	}

	var resp struct {
		Status string              `json:"status"`
		Error  string              `json:"error"`
		Result sceneSnapshotResult `json:"result"`
	}
	if err := json.Unmarshal([]byte(envelope), &resp); err != nil {
		return nil, fmt.Errorf("%s - decode scene query reply: %w", logPrefix, err)
	}
	if resp.Status != bridge.StatusSuccess {
		return nil, fmt.Errorf("%s - scene query failed: %s", logPrefix, resp.Error)
	}
	return &resp.Result, nil
}

// handleHome returns an HTTP handler for the bridge status page.
func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
		defer cancel()

		data := homeData{
			Health:   s.health(ctx),
			Protocol: protoversion.Version,
			Uptime:   time.Since(s.started).Round(time.Second).String(),
			Ticks:    s.controller.Pump().Ticks(),
			Commands: s.registry.Names(),
		}
		if addr := s.controller.Addr(); addr != nil {
			data.Addr = addr.String()
		}

		// Scene state belongs to the tick goroutine, so the status page
		// reads it the way any client does: a queued command.
		if info, err := s.sceneSnapshot(ctx); err != nil {
			data.SceneError = err.Error()
		} else {
			data.SceneName = info.Name
			data.ObjectCount = info.ObjectCount
			data.Selected = info.Selected
		}

		history, err := s.jrnl.Tail(ctx, 20)
		if err != nil {
			data.HistoryError = err.Error()
		} else {
			data.History = history
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
