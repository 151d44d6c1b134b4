//go:build unix

// Package session runs the server side of one tunnel session: it binds a
// freshly spawned shell's pseudo-terminal to an accepted connection and
// relays bytes between them until either side ends.
package session

import (
	"net"
	"os/exec"

	"github.com/compulab/shell-tunnel/internal/config"
	"github.com/compulab/shell-tunnel/internal/logging"
	"github.com/compulab/shell-tunnel/internal/relay"
	"github.com/creack/pty"
	"github.com/google/uuid"
)

// Handler spawns one shell per accepted connection. The zero value is not
// usable; create it with NewHandler.
type Handler struct {
	shell []string
}

// NewHandler returns a Handler that spawns the given shell argv. An empty
// argv means the build-configured shell.
func NewHandler(shell []string) *Handler {
	if len(shell) == 0 {
		shell = config.ShellCommand()
	}
	return &Handler{shell: shell}
}

// Handle owns conn for the lifetime of one session: it allocates a
// pseudo-terminal pair, spawns the shell attached to the subordinate side,
// and relays bytes between the connection and the controlling side. It
// returns when the relay ends; the shell's own exit is never awaited here.
// Spawn failures abort only this session.
func (h *Handler) Handle(conn *net.UnixConn) {
	defer func() { _ = conn.Close() }()

	id := uuid.NewString()[:8]
	logging.Basicf("session %s: connection accepted", id)

	ptmx, tty, err := pty.Open()
	if err != nil {
		logging.Errorf("session %s: could not open pseudo terminal: %v", id, err)
		return
	}
	defer func() { _ = ptmx.Close() }()

	cmd := exec.Command(h.shell[0], h.shell[1:]...)
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	configureShellCommand(cmd)

	if err := cmd.Start(); err != nil {
		_ = tty.Close()
		logging.Errorf("session %s: could not start shell %s: %v", id, h.shell[0], err)
		return
	}

	// The subordinate side belongs to the shell now.
	_ = tty.Close()

	// Reap the shell asynchronously so short sessions don't accumulate
	// zombies. The session ends with the relay, not with the shell's exit.
	go func() { _ = cmd.Wait() }()

	connFile, err := conn.File()
	if err != nil {
		logging.Errorf("session %s: could not get connection descriptor: %v", id, err)
		return
	}
	defer func() { _ = connFile.Close() }()

	res := relay.Run(
		relay.Endpoint{In: int(connFile.Fd()), Out: int(connFile.Fd()), Name: "connection"},
		relay.Endpoint{In: int(ptmx.Fd()), Out: int(ptmx.Fd()), Name: "pty"},
	)
	logging.Debugf("session %s: relay ended: %s on %s", id, res.Cause, res.Endpoint)
	logging.Basicf("session %s: ended", id)
}
