//go:build android

package config

// SocketPath is the fixed filesystem address of the listening channel on
// Android builds.
const SocketPath = "/data/misc/shell-tunnel-socket"

// ShellCommand returns the argv of the interactive shell spawned per
// accepted connection.
func ShellCommand() []string {
	return []string{"/system/bin/sh", "-i"}
}
