// Package config holds the build-time endpoints of the tunnel (socket path
// and shell command, selected by build target) and the optional TOML user
// configuration for ambient settings such as logging.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// UserConfig is the on-disk configuration. Only ambient knobs live here;
// the socket path and shell command are fixed at build time and are
// deliberately not configurable (see SocketPath and ShellCommand).
type UserConfig struct {
	Daemon DaemonConfig `toml:"daemon"`
	Client ClientConfig `toml:"client"`
}

// DaemonConfig configures daemon-side logging.
type DaemonConfig struct {
	// LogLevel is one of "off", "basic", "debug".
	LogLevel string `toml:"log_level"`
	// LogFile redirects daemon logging when set.
	LogFile string `toml:"log_file"`
}

// ClientConfig holds client-side defaults.
type ClientConfig struct {
	// LocalEcho keeps local echo enabled in the proxied session,
	// the same as running with --echo.
	LocalEcho bool `toml:"local_echo"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *UserConfig {
	return &UserConfig{
		Daemon: DaemonConfig{
			LogLevel: "basic",
		},
	}
}

// GetConfigPath returns the path of the user configuration file.
func GetConfigPath() (string, error) {
	path, err := xdg.ConfigFile("shell-tunnel/config.toml")
	if err != nil {
		return "", fmt.Errorf("could not resolve config path: %w", err)
	}
	return path, nil
}

// LoadUserConfig loads the configuration file, returning defaults when the
// file does not exist.
func LoadUserConfig() (*UserConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("could not read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("could not parse config: %w", err)
	}
	return cfg, nil
}

// WriteDefaultConfig overwrites the configuration file with defaults.
func WriteDefaultConfig() (string, error) {
	path, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	header := "# shell-tunnel configuration\n" +
		"# Ambient settings only: the socket path and shell command are\n" +
		"# fixed at build time.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

// PidFilePath returns where the daemon records its PID. The runtime dir is
// preferred; /tmp is the fallback for environments without one.
func PidFilePath() string {
	if path, err := xdg.RuntimeFile("shell-tunnel.pid"); err == nil {
		return path
	}
	return filepath.Join(os.TempDir(), "shell-tunnel.pid")
}
