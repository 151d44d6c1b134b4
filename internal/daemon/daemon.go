//go:build unix

// Package daemon owns the listening channel of the tunnel: it binds the
// unix socket, accepts connections serially, and dispatches each one to an
// independent session worker.
package daemon

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/compulab/shell-tunnel/internal/config"
	"github.com/compulab/shell-tunnel/internal/logging"
	"github.com/compulab/shell-tunnel/internal/session"
	"golang.org/x/sys/unix"
)

// Config holds daemon settings. Zero values mean the build-time defaults;
// tests override them to run against throwaway paths.
type Config struct {
	SocketPath string
	PidFile    string
	Shell      []string
}

// Daemon is the connection acceptor. It is single-threaded in its own
// accept loop; every accepted connection is handed to a fresh session
// goroutine and never touched again.
type Daemon struct {
	cfg      Config
	listener *net.UnixListener
	handler  *session.Handler
	closing  atomic.Bool
}

// New creates a daemon instance.
func New(cfg Config) *Daemon {
	if cfg.SocketPath == "" {
		cfg.SocketPath = config.SocketPath
	}
	if cfg.PidFile == "" {
		cfg.PidFile = config.PidFilePath()
	}
	return &Daemon{
		cfg:     cfg,
		handler: session.NewHandler(cfg.Shell),
	}
}

// Start binds and listens on the socket. A live daemon at the same address
// fails startup and is left untouched; a stale socket file is removed
// before rebinding. Every failure here is terminal: there is no retry.
func (d *Daemon) Start() error {
	path := d.cfg.SocketPath

	if _, err := os.Stat(path); err == nil {
		if isDaemonAlive(path) {
			return fmt.Errorf("daemon already running at %s", path)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	listener, err := listenUnix(path)
	if err != nil {
		return err
	}

	// World-connectable, deliberately: any local user may open a session
	// and reach this process's privilege level. This is the tunnel's
	// documented permission contract; do not restrict it.
	if err := os.Chmod(path, 0666); err != nil {
		_ = listener.Close()
		_ = os.Remove(path)
		return fmt.Errorf("could not change socket mode: %w", err)
	}

	if err := d.writePidFile(); err != nil {
		_ = listener.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	d.listener = listener
	logging.Basicf("shell-tunnel daemon listening on %s (PID %d)", path, os.Getpid())
	return nil
}

// Run starts the daemon and blocks in the accept loop until a terminal
// accept error or a shutdown signal.
func (d *Daemon) Run() error {
	if err := d.Start(); err != nil {
		return err
	}
	go d.handleSignals()

	err := d.acceptLoop()
	d.shutdown()
	return err
}

// Stop makes the accept loop exit. Sessions already dispatched continue
// independently.
func (d *Daemon) Stop() {
	if d.closing.CompareAndSwap(false, true) {
		if d.listener != nil {
			_ = d.listener.Close()
		}
	}
}

// acceptLoop accepts connections serially and dispatches each to its own
// session goroutine. Accept errors are terminal; previously dispatched
// sessions are unaffected.
func (d *Daemon) acceptLoop() error {
	for {
		conn, err := d.listener.AcceptUnix()
		if err != nil {
			if d.closing.Load() {
				return nil
			}
			logging.Errorf("could not accept connection: %v", err)
			return fmt.Errorf("accept: %w", err)
		}
		go d.handler.Handle(conn)
	}
}

func (d *Daemon) shutdown() {
	d.Stop()
	_ = os.Remove(d.cfg.SocketPath)
	_ = os.Remove(d.cfg.PidFile)
	logging.Basicf("daemon shutdown complete")
}

func (d *Daemon) handleSignals() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	logging.Basicf("shutting down daemon...")
	d.Stop()
}

func (d *Daemon) writePidFile() error {
	return os.WriteFile(d.cfg.PidFile, []byte(strconv.Itoa(os.Getpid())), 0600)
}

// listenUnix binds the socket and listens with a backlog of one pending
// connection, then wraps the descriptor into a *net.UnixListener.
func listenUnix(path string) (*net.UnixListener, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("could not open socket: %w", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("could not bind to socket: %w", err)
	}

	if err := unix.Listen(fd, 1); err != nil {
		_ = unix.Close(fd)
		_ = os.Remove(path)
		return nil, fmt.Errorf("could not listen on socket: %w", err)
	}

	f := os.NewFile(uintptr(fd), path)
	ln, err := net.FileListener(f)
	// FileListener duplicates the descriptor; the original is ours to close.
	_ = f.Close()
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("could not wrap socket: %w", err)
	}

	ul, ok := ln.(*net.UnixListener)
	if !ok {
		_ = ln.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("unexpected listener type %T", ln)
	}
	return ul, nil
}

// isDaemonAlive probes the socket to distinguish a live daemon from a
// stale socket file left by a previous run.
func isDaemonAlive(path string) bool {
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// IsRunning reports whether a daemon is reachable at the build-configured
// socket path.
func IsRunning() bool {
	return isDaemonAlive(config.SocketPath)
}

// ReadPid returns the PID recorded by a running daemon, or 0.
func ReadPid(pidFile string) int {
	if pidFile == "" {
		pidFile = config.PidFilePath()
	}
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0
	}
	return pid
}
