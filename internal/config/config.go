// Package config provides bridge configuration loaded from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// Config holds host-bridge configuration.
type Config struct {
	// Bridge listener. BridgeHost defaults to loopback; exposing the
	// bridge beyond localhost has to be an explicit choice.
	BridgeHost string `envconfig:"BRIDGE_HOST" default:"127.0.0.1"`
	BridgePort int    `envconfig:"BRIDGE_PORT" default:"6400"`

	// ReadLimit bounds a single request line in bytes.
	ReadLimit int `envconfig:"BRIDGE_READ_LIMIT" default:"32768"`

	// TickInterval drives the built-in tick pump. Zero disables it, for
	// hosts that call Tick from their own frame loop.
	TickInterval time.Duration `envconfig:"BRIDGE_TICK_INTERVAL" default:"50ms"`

	// PendingTimeout bounds how long a connection waits for its command
	// to be picked up and executed by a tick.
	PendingTimeout time.Duration `envconfig:"BRIDGE_PENDING_TIMEOUT" default:"15s"`

	// COMMS: connect to standalone NATS at COMMSURL. Empty disables
	// event publishing.
	COMMSURL  string `envconfig:"COMMS_URL"`
	COMMSName string `envconfig:"SERVICE_NAME" default:"host-bridge"`

	// EventSubject overrides the global dispatch event subject.
	EventSubject string `envconfig:"BRIDGE_EVENT_SUBJECT"`

	// Database. Empty uses the in-memory command journal.
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"false"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"migrations"`

	// JournalLimit caps the in-memory journal size.
	JournalLimit int `envconfig:"JOURNAL_LIMIT" default:"1024"`

	// HTTP health endpoint.
	HTTPPort           int           `envconfig:"HTTP_PORT" default:"8080"`
	HealthCheckTimeout time.Duration `envconfig:"HEALTH_CHECK_TIMEOUT" default:"5s"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// BridgeAddr returns the listener address in host:port form.
func (c *Config) BridgeAddr() string {
	return fmt.Sprintf("%s:%d", c.BridgeHost, c.BridgePort)
}

// ValidateForServe checks required config when running the bridge server.
func (c *Config) ValidateForServe() error {
	if c.BridgePort <= 0 || c.BridgePort > 65535 {
		return fmt.Errorf("%s - BRIDGE_PORT must be in 1..65535", logPrefix)
	}
	if c.ReadLimit <= 0 {
		return fmt.Errorf("%s - BRIDGE_READ_LIMIT must be positive", logPrefix)
	}
	if c.TickInterval < 0 {
		return fmt.Errorf("%s - BRIDGE_TICK_INTERVAL must not be negative", logPrefix)
	}
	if c.PendingTimeout <= 0 {
		return fmt.Errorf("%s - BRIDGE_PENDING_TIMEOUT must be positive", logPrefix)
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("%s - HEALTH_CHECK_TIMEOUT must be positive", logPrefix)
	}
	return nil
}

// ValidateForDB checks required config when running DB-dependent commands (migrate).
func (c *Config) ValidateForDB() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s - DATABASE_URL is required", logPrefix)
	}
	return nil
}
