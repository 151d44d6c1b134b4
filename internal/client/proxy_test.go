//go:build linux

package client_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"

	"github.com/compulab/shell-tunnel/internal/client"
	"github.com/compulab/shell-tunnel/internal/daemon"
)

func requirePTY(t *testing.T) {
	t.Helper()
	ptm, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	_ = ptm.Close()
	_ = tty.Close()
}

func startDaemon(t *testing.T, shell []string) string {
	t.Helper()

	dir := t.TempDir()
	cfg := daemon.Config{
		SocketPath: filepath.Join(dir, "tunnel.sock"),
		PidFile:    filepath.Join(dir, "tunnel.pid"),
		Shell:      shell,
	}

	d := daemon.New(cfg)
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run() }()
	t.Cleanup(func() {
		d.Stop()
		select {
		case <-errCh:
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	})

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(cfg.SocketPath); err == nil {
			return cfg.SocketPath
		}
		if time.Now().After(deadline) {
			t.Fatalf("daemon socket never appeared at %s", cfg.SocketPath)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// TestProxyEndToEnd drives a full round trip: keystrokes in through the
// proxy, shell output back out. Pipes stand in for the terminal, so the
// raw-mode path is skipped and no terminal state is at risk.
func TestProxyEndToEnd(t *testing.T) {
	requirePTY(t)

	socketPath := startDaemon(t, []string{"/bin/sh", "-c", "echo ready; exec cat"})

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	t.Cleanup(func() {
		_ = stdinR.Close()
		_ = stdinW.Close()
		_ = stdoutR.Close()
		_ = stdoutW.Close()
	})

	p := &client.Proxy{SocketPath: socketPath, Stdin: stdinR, Stdout: stdoutW}
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run() }()

	if _, err := stdinW.Write([]byte("ping\n")); err != nil {
		t.Fatalf("write to proxy stdin: %v", err)
	}

	_ = stdoutR.SetReadDeadline(time.Now().Add(5 * time.Second))
	var seen strings.Builder
	buf := make([]byte, 256)
	for !strings.Contains(seen.String(), "ping") {
		n, rerr := stdoutR.Read(buf)
		if n > 0 {
			seen.Write(buf[:n])
		}
		if rerr != nil {
			t.Fatalf("shell output not relayed before %v, got %q", rerr, seen.String())
		}
	}

	// End of input on the local side ends the session.
	_ = stdinW.Close()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("proxy returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("proxy did not return after stdin closed")
	}
}

func TestProxyConnectFailure(t *testing.T) {
	p := &client.Proxy{SocketPath: filepath.Join(t.TempDir(), "absent.sock")}
	err := p.Run()
	if err == nil {
		t.Fatal("expected connect failure")
	}
	if !strings.Contains(err.Error(), "could not connect") {
		t.Errorf("error = %q, want a connect failure", err)
	}
}
