// Package commsutil provides the bridge's COMMS connection helper and event
// subject names.
package commsutil

import (
	"fmt"
	"log/slog"
	"time"

	comms "github.com/nats-io/nats.go"
)

const logPrefix = "commsutil:connect"

// DefaultName identifies the bridge on the broker when no service name is
// configured.
const DefaultName = "host-bridge"

// The bridge publishes best-effort events, so a broker blip must never take
// the bridge down: reconnect forever, with a short dial timeout so startup
// fails fast when the broker is simply absent.
const (
	dialTimeout   = 5 * time.Second
	reconnectWait = time.Second
)

// Connect dials the COMMS broker the bridge publishes dispatch and lifecycle
// events to. While disconnected, the client buffers publishes; command
// processing is unaffected either way.
func Connect(url, name string) (*comms.Conn, error) {
	if name == "" {
		name = DefaultName
	}
	slog.Info(fmt.Sprintf("%s - Connecting to COMMS at %s as %s", logPrefix, url, name))

	nc, err := comms.Connect(url,
		comms.Name(name),
		comms.Timeout(dialTimeout),
		comms.ReconnectWait(reconnectWait),
		comms.MaxReconnects(-1),
		comms.DisconnectErrHandler(func(_ *comms.Conn, err error) {
			slog.Warn(fmt.Sprintf("%s - COMMS disconnected, event publishing degraded: %v", logPrefix, err))
		}),
		comms.ReconnectHandler(func(nc *comms.Conn) {
			slog.Info(fmt.Sprintf("%s - COMMS reconnected to %s, event publishing restored", logPrefix, nc.ConnectedUrl()))
		}),
		comms.ClosedHandler(func(_ *comms.Conn) {
			slog.Info(fmt.Sprintf("%s - COMMS connection closed", logPrefix))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to connect to COMMS at %s: %w", logPrefix, url, err)
	}
	return nc, nil
}
