// Package main is the entrypoint for the host-bridge (binary name "bridge").
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/morezero/host-bridge/internal/config"
	"github.com/morezero/host-bridge/internal/server"
	"github.com/morezero/host-bridge/pkg/journal"
)

const usage = `Usage: bridge [command]
       bridge serve                Start the bridge (TCP listener, tick pump, HTTP status).
       bridge ping                 Probe a running bridge with the ping fast path.
       bridge send <json>          Send one command envelope and print the response.
       bridge migrate up           Run command-journal migrations.
       bridge migrate status       Show migration status.

Commands:
  serve           (default) Start the host bridge.
  ping            Send the bare "ping" token to BRIDGE_HOST:BRIDGE_PORT.
  send <json>     Send a raw JSON command, e.g. '{"type":"GET_SCENE_INFO"}'.
  migrate up      Run journal migrations only (requires DATABASE_URL).
  migrate status  Show current migration status (requires DATABASE_URL).

Environment: BRIDGE_HOST, BRIDGE_PORT (default 6400), DATABASE_URL (journal),
COMMS_URL (events), MIGRATION_PATH, HTTP_PORT (default 8080). See README.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "migrate":
		if len(args) < 2 {
			log.Fatalf("bridge migrate: require subcommand (up, status)")
		}
		sub := args[1]
		switch sub {
		case "up":
			if err := runMigrateUp(); err != nil {
				log.Fatalf("bridge migrate up: %v", err)
			}
		case "status":
			if err := runMigrateStatus(); err != nil {
				log.Fatalf("bridge migrate status: %v", err)
			}
		default:
			log.Fatalf("bridge migrate: unknown subcommand %q (use up, status)", sub)
		}
		return
	case "ping":
		if err := runPing(); err != nil {
			log.Fatalf("bridge ping: %v", err)
		}
		return
	case "send":
		if len(args) < 2 || args[1] == "" {
			log.Fatalf("bridge send: require a JSON command argument")
		}
		if err := runSend(args[1]); err != nil {
			log.Fatalf("bridge send: %v", err)
		}
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "serve", "":
		// serve (explicit or default)
		break
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		log.Fatalf("bridge: %v", err)
	}
}

func runMigrateUp() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := journal.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	migrations, err := journal.LoadMigrationFiles(cfg.MigrationPath)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	if err := journal.RunMigrations(ctx, pool, migrations); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func runMigrateStatus() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := journal.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return journal.MigrationStatus(ctx, pool, cfg.MigrationPath)
}
