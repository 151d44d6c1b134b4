//go:build unix

// Package relay implements the bidirectional byte relay at the core of the
// tunnel. The same relay runs on both sides: socket↔pty in the daemon and
// terminal↔socket in the client.
package relay

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// pollTimeoutMs bounds each readiness wait so both directions are
// re-evaluated periodically. It is a liveness aid only; sessions never
// expire from inactivity.
const pollTimeoutMs = 5000

const bufferSize = 4096

// Cause classifies why a relay stopped.
type Cause int

const (
	// EndOfStream means a read observed end of stream. This is the
	// normal way a session ends.
	EndOfStream Cause = iota
	// ReadFailed means a read returned an error.
	ReadFailed
	// WriteFailed means a write failed or accepted no bytes.
	WriteFailed
)

func (c Cause) String() string {
	switch c {
	case EndOfStream:
		return "end of stream"
	case ReadFailed:
		return "read failed"
	case WriteFailed:
		return "write failed"
	}
	return "unknown"
}

// Endpoint is one side of a relay: a descriptor read from and a descriptor
// written to. For sockets and ptys both are the same descriptor; for the
// client's terminal they are stdin and stdout.
type Endpoint struct {
	In   int
	Out  int
	Name string
}

// Result reports the terminating condition of a relay.
type Result struct {
	Cause    Cause
	Endpoint string // name of the endpoint the condition occurred on
	Err      error  // set for ReadFailed/WriteFailed
}

// Run copies bytes between two endpoints until either direction observes
// end of stream or an I/O error. Data read from a is written to b and vice
// versa; within a direction bytes are forwarded in order. Any terminating
// condition tears down the whole relay: a broken half never leaves a
// one-way session behind.
//
// Both input descriptors are multiplexed in a single readiness loop.
// Direction a→b is serviced first within each wakeup, so end of stream on
// a is acted on before any still-buffered data from b is forwarded.
func Run(a, b Endpoint) Result {
	buf := make([]byte, bufferSize)
	fds := []unix.PollFd{
		{Fd: int32(a.In), Events: unix.POLLIN},
		{Fd: int32(b.In), Events: unix.POLLIN},
	}

	for {
		fds[0].Revents = 0
		fds[1].Revents = 0

		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return Result{Cause: ReadFailed, Err: fmt.Errorf("poll: %w", err)}
		}
		if n == 0 {
			// Idle timeout: re-evaluate both directions.
			continue
		}

		if ready(fds[0].Revents) {
			if res, done := forward(a, b, buf); done {
				return res
			}
		}
		if ready(fds[1].Revents) {
			if res, done := forward(b, a, buf); done {
				return res
			}
		}
	}
}

// ready reports whether a descriptor has data or a terminal condition
// pending. POLLHUP and POLLERR must be read out to observe the end of
// stream or error.
func ready(revents int16) bool {
	return revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0
}

// forward moves one batch of bytes from src to dst. It returns done=true
// with the terminating Result when the relay must stop.
func forward(src, dst Endpoint, buf []byte) (Result, bool) {
	n, err := unix.Read(src.In, buf)
	if err != nil {
		if err == unix.EINTR || err == unix.EAGAIN {
			return Result{}, false
		}
		return Result{
			Cause:    ReadFailed,
			Endpoint: src.Name,
			Err:      fmt.Errorf("read %s: %w", src.Name, err),
		}, true
	}
	if n == 0 {
		return Result{Cause: EndOfStream, Endpoint: src.Name}, true
	}

	for off := 0; off < n; {
		m, err := unix.Write(dst.Out, buf[off:n])
		if err != nil || m < 1 {
			if err == nil {
				err = fmt.Errorf("wrote %d bytes", m)
			}
			return Result{
				Cause:    WriteFailed,
				Endpoint: dst.Name,
				Err:      fmt.Errorf("write %s: %w", dst.Name, err),
			}, true
		}
		off += m
	}
	return Result{}, false
}
