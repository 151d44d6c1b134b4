//go:build linux

// Package client attaches the invoking user's terminal to a running
// shell-tunnel daemon: raw mode in, bytes through, terminal restored on
// every way out.
package client

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/compulab/shell-tunnel/internal/config"
	"github.com/compulab/shell-tunnel/internal/console"
	"github.com/compulab/shell-tunnel/internal/logging"
	"github.com/compulab/shell-tunnel/internal/relay"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const dialTimeout = 5 * time.Second

// Proxy connects the local terminal to the daemon's socket. Zero values
// mean the build-time socket path and the process's stdin/stdout; tests
// substitute pipes.
type Proxy struct {
	SocketPath string
	LocalEcho  bool
	Stdin      *os.File
	Stdout     *os.File
}

// Run connects, switches the terminal to raw mode, relays until either
// side ends, and restores the terminal. A connect failure exits before any
// terminal mode change, so nothing needs restoring on that path.
func (p *Proxy) Run() error {
	socketPath := p.SocketPath
	if socketPath == "" {
		socketPath = config.SocketPath
	}
	stdin := p.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := p.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	conn, err := net.DialTimeout("unix", socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", socketPath, err)
	}
	defer func() { _ = conn.Close() }()

	connFile, err := conn.(*net.UnixConn).File()
	if err != nil {
		return fmt.Errorf("could not get connection descriptor: %w", err)
	}
	defer func() { _ = connFile.Close() }()
	connFd := int(connFile.Fd())

	inFd := int(stdin.Fd())
	var guard *console.Guard
	if term.IsTerminal(inFd) {
		guard, err = console.Capture(inFd)
		if err != nil {
			return err
		}
		if err := guard.ApplyRaw(p.LocalEcho); err != nil {
			_ = guard.Restore()
			return err
		}
		defer func() { _ = guard.Restore() }()

		// Raw mode leaves ISIG enabled, so an interrupt still kills this
		// process; restore the terminal before it does.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		done := make(chan struct{})
		defer close(done)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case <-sigCh:
				_ = guard.Restore()
				_ = unix.Shutdown(connFd, unix.SHUT_RDWR)
				fmt.Fprintln(stdout)
				os.Exit(0)
			case <-done:
			}
		}()
	}

	res := relay.Run(
		relay.Endpoint{In: inFd, Out: int(stdout.Fd()), Name: "terminal"},
		relay.Endpoint{In: connFd, Out: connFd, Name: "connection"},
	)
	logging.Debugf("relay ended: %s on %s", res.Cause, res.Endpoint)

	if guard != nil {
		_ = guard.Restore()
	}
	_ = unix.Shutdown(connFd, unix.SHUT_RDWR)

	// Cosmetic cursor reset: raw mode leaves the cursor mid-line.
	fmt.Fprintln(stdout)
	return nil
}
