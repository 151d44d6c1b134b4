//go:build !android

package config

// SocketPath is the fixed filesystem address of the listening channel.
// It is part of the wire contract between daemon and client builds and is
// not configurable at runtime.
const SocketPath = "/tmp/shell-tunnel-socket"

// ShellCommand returns the argv of the interactive shell spawned per
// accepted connection.
func ShellCommand() []string {
	return []string{"/bin/bash", "-i"}
}
