package config_test

import (
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/compulab/shell-tunnel/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.Daemon.LogLevel != "basic" {
		t.Errorf("default log level = %q, want %q", cfg.Daemon.LogLevel, "basic")
	}
	if cfg.Daemon.LogFile != "" {
		t.Errorf("default log file = %q, want empty", cfg.Daemon.LogFile)
	}
	if cfg.Client.LocalEcho {
		t.Error("local echo should default to off")
	}
}

func TestConfigUnmarshalOverridesDefaults(t *testing.T) {
	data := []byte(`
[daemon]
log_level = "debug"
log_file = "/var/log/shell-tunnel.log"

[client]
local_echo = true
`)

	cfg := config.DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if cfg.Daemon.LogLevel != "debug" {
		t.Errorf("log level = %q, want %q", cfg.Daemon.LogLevel, "debug")
	}
	if cfg.Daemon.LogFile != "/var/log/shell-tunnel.log" {
		t.Errorf("log file = %q", cfg.Daemon.LogFile)
	}
	if !cfg.Client.LocalEcho {
		t.Error("local echo not set")
	}
}

func TestConfigUnmarshalPartialKeepsDefaults(t *testing.T) {
	data := []byte("[client]\nlocal_echo = true\n")

	cfg := config.DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if cfg.Daemon.LogLevel != "basic" {
		t.Errorf("log level = %q, want default %q", cfg.Daemon.LogLevel, "basic")
	}
	if !cfg.Client.LocalEcho {
		t.Error("local echo not set")
	}
}

func TestSocketPath(t *testing.T) {
	if config.SocketPath == "" {
		t.Fatal("socket path is empty")
	}
	if !strings.Contains(config.SocketPath, "shell-tunnel") {
		t.Errorf("socket path %q does not identify the tunnel", config.SocketPath)
	}
}

func TestShellCommand(t *testing.T) {
	argv := config.ShellCommand()
	if len(argv) < 2 {
		t.Fatalf("shell argv = %v, want interpreter plus flags", argv)
	}
	if argv[len(argv)-1] != "-i" {
		t.Errorf("shell argv = %v, want an interactive shell", argv)
	}
}

func TestPidFilePath(t *testing.T) {
	path := config.PidFilePath()
	if path == "" {
		t.Fatal("pid file path is empty")
	}
	if !strings.HasSuffix(path, "shell-tunnel.pid") {
		t.Errorf("pid file path = %q", path)
	}
}
