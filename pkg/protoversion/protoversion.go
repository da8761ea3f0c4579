// Package protoversion defines the bridge protocol version and the
// compatibility rule applied during the client handshake.
package protoversion

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const logPrefix = "protoversion"

// Version is the protocol version the bridge speaks.
const Version = "1.2.0"

var current = semver.MustParse(Version)

// Current returns the parsed bridge protocol version.
func Current() *semver.Version {
	return current
}

// Check reports whether a client at the given version can talk to this
// bridge. Compatibility requires the same major version, and the client must
// not be newer than the bridge.
func Check(clientVersion string) error {
	raw := strings.TrimSpace(clientVersion)
	if raw == "" {
		return fmt.Errorf("%s - client version must not be empty", logPrefix)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("%s - invalid client version %q: %w", logPrefix, raw, err)
	}
	if v.Major() != current.Major() {
		return fmt.Errorf("%s - client version %s is incompatible with bridge %s (major mismatch)", logPrefix, v, current)
	}
	if v.GreaterThan(current) {
		return fmt.Errorf("%s - client version %s is newer than bridge %s", logPrefix, v, current)
	}
	return nil
}
