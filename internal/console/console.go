//go:build linux

// Package console manages the local terminal's mode for the duration of a
// proxied session: capture the current attributes, switch to raw input,
// and guarantee restoration on every exit path.
package console

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Guard owns a terminal-attribute snapshot taken by Capture. Restore puts
// the snapshot back exactly once, no matter how many exit paths race to
// call it.
type Guard struct {
	fd          int
	saved       unix.Termios
	restoreOnce sync.Once
	restoreErr  error
}

// Capture snapshots the terminal attributes of fd. It must be called
// before any mutation of the terminal mode.
func Capture(fd int) (*Guard, error) {
	state, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("could not read terminal attributes: %w", err)
	}
	return &Guard{fd: fd, saved: *state}, nil
}

// ApplyRaw disables canonical (line-buffered) input and, unless localEcho
// is set, local echo. The change is applied after pending output drains.
func (g *Guard) ApplyRaw(localEcho bool) error {
	raw := g.saved
	raw.Lflag &^= unix.ICANON
	if !localEcho {
		raw.Lflag &^= unix.ECHO
	}

	// TCSETSW drains pending output before the switch, so nothing
	// already written is garbled by the mode change.
	if err := unix.IoctlSetTermios(g.fd, unix.TCSETSW, &raw); err != nil {
		return fmt.Errorf("could not apply raw mode: %w", err)
	}
	return nil
}

// Restore reapplies the captured attributes, with the same drain
// discipline as ApplyRaw. Only the first call has effect; later calls
// return the first call's result.
func (g *Guard) Restore() error {
	g.restoreOnce.Do(func() {
		if err := unix.IoctlSetTermios(g.fd, unix.TCSETSW, &g.saved); err != nil {
			g.restoreErr = fmt.Errorf("could not restore terminal attributes: %w", err)
		}
	})
	return g.restoreErr
}
