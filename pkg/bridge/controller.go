package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

const controllerLogPrefix = "bridge:controller"

// Options configures a Controller.
type Options struct {
	// Addr is the listen address, e.g. "127.0.0.1:6400".
	Addr string
	// ReadLimit is the maximum request line length in bytes.
	ReadLimit int
	// WaitTimeout bounds a connection's wait for the host tick per command.
	WaitTimeout time.Duration
	// TickInterval drives the internal ticker. Zero disables it; the
	// embedding host then calls Pump().Tick from its own per-frame callback.
	TickInterval time.Duration
}

// Controller owns start/stop of the listener and the tick pump. Start and
// Stop are idempotent, and one controller holds at most one listener socket.
type Controller struct {
	opts  Options
	table *PendingTable
	pump  *TickPump

	mu       sync.Mutex
	running  bool
	listener *Listener
	tickStop chan struct{}
	tickDone chan struct{}
}

// NewController creates a stopped Controller.
func NewController(opts Options, table *PendingTable, pump *TickPump) *Controller {
	return &Controller{opts: opts, table: table, pump: pump}
}

// Start binds the listener, launches the accept loop, and (when configured
// with a tick interval) starts the tick driver. A no-op when already
// running. A bind failure is surfaced as a hard error.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		slog.Info(fmt.Sprintf("%s - Already running on %s", controllerLogPrefix, c.opts.Addr))
		return nil
	}

	listener := NewListener(c.table, ListenerOptions{
		ReadLimit:   c.opts.ReadLimit,
		WaitTimeout: c.opts.WaitTimeout,
	})
	if err := listener.Start(c.opts.Addr); err != nil {
		return fmt.Errorf("%s - start: %w", controllerLogPrefix, err)
	}
	c.listener = listener
	c.running = true

	if c.opts.TickInterval > 0 {
		c.tickStop = make(chan struct{})
		c.tickDone = make(chan struct{})
		go c.tickLoop(c.opts.TickInterval, c.tickStop, c.tickDone)
	}

	slog.Info(fmt.Sprintf("%s - Bridge started on %s", controllerLogPrefix, listener.Addr()))
	return nil
}

// Stop flips the running flag first, so in-flight accept errors read as
// shutdown noise, then stops the tick driver (whose final drain answers
// already-queued commands while their connections still wait) and finally
// closes the socket. A no-op when not running.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}
	c.running = false

	if c.tickStop != nil {
		close(c.tickStop)
		<-c.tickDone
		c.tickStop = nil
		c.tickDone = nil
	}

	err := c.listener.Close()
	c.listener = nil

	slog.Info(fmt.Sprintf("%s - Bridge stopped", controllerLogPrefix))
	return err
}

// Running reports whether the bridge is started.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Addr returns the bound listener address, or nil when stopped. Useful when
// started with port 0.
func (c *Controller) Addr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listener == nil {
		return nil
	}
	return c.listener.Addr()
}

// Pump exposes the tick pump for hosts that drive ticking themselves.
func (c *Controller) Pump() *TickPump {
	return c.pump
}

// tickLoop stands in for the host's per-frame callback when the bridge runs
// standalone: one goroutine, one Tick per interval, strictly serial.
func (c *Controller) tickLoop(interval time.Duration, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := context.Background()
	for {
		select {
		case <-ticker.C:
			c.pump.Tick(ctx)
		case <-stop:
			// Final drain. Stop closes the listener only after this
			// returns, so queued commands are answered while their
			// connections are still waiting.
			c.pump.Tick(ctx)
			return
		}
	}
}
