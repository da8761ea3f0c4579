package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/morezero/host-bridge/internal/config"
	"github.com/morezero/host-bridge/pkg/bridge"
)

const clientTimeout = 20 * time.Second

// sendLine dials the bridge, writes one request line, and returns the
// response line.
func sendLine(addr, request string) (string, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(clientTimeout))
	if _, err := conn.Write([]byte(request + "\n")); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return line, nil
}

func runPing() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	resp, err := sendLine(cfg.BridgeAddr(), bridge.PingToken)
	if err != nil {
		return err
	}
	fmt.Print(resp)
	return nil
}

func runSend(payload string) error {
	if !json.Valid([]byte(payload)) {
		return fmt.Errorf("argument is not valid JSON: %s", payload)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	resp, err := sendLine(cfg.BridgeAddr(), payload)
	if err != nil {
		return err
	}

	// Pretty-print when the response parses; print raw otherwise.
	var parsed interface{}
	if err := json.Unmarshal([]byte(resp), &parsed); err == nil {
		pretty, err := json.MarshalIndent(parsed, "", "  ")
		if err == nil {
			fmt.Println(string(pretty))
			return nil
		}
	}
	fmt.Print(resp)
	return nil
}
