//go:build unix

package session

import (
	"os/exec"
	"syscall"
)

// configureShellCommand makes the spawned shell a session leader with the
// pty as its controlling terminal, so job control works inside the tunnel.
func configureShellCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		Ctty:    0, // stdin, which is the pty subordinate side
	}
}
