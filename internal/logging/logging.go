// Package logging provides level-gated logging for the shell-tunnel daemon
// and client on top of the standard library logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level controls how much the daemon logs.
type Level int32

const (
	// LevelOff disables all output except errors.
	LevelOff Level = iota
	// LevelBasic logs connection lifecycle events.
	LevelBasic
	// LevelDebug logs relay teardown causes and other diagnostics.
	LevelDebug
)

var currentLevel atomic.Int32

// SetLevel sets the global log level.
func SetLevel(l Level) {
	currentLevel.Store(int32(l))
}

// GetLevel returns the current global log level.
func GetLevel() Level {
	return Level(currentLevel.Load())
}

// ParseLevel converts a config string into a Level. Unknown values
// fall back to basic.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return LevelOff
	case "debug":
		return LevelDebug
	default:
		return LevelBasic
	}
}

// SetOutput redirects log output, typically to the daemon's log file.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// OpenLogFile opens (appending) the given path and redirects log output
// to it.
func OpenLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}

// Basicf logs connection lifecycle events.
func Basicf(format string, args ...any) {
	if GetLevel() >= LevelBasic {
		log.Printf(format, args...)
	}
}

// Debugf logs diagnostics that are only interesting when debugging.
func Debugf(format string, args ...any) {
	if GetLevel() >= LevelDebug {
		log.Printf(format, args...)
	}
}

// Errorf logs failures. Errors are always logged.
func Errorf(format string, args ...any) {
	log.Printf("ERROR: "+format, args...)
}
