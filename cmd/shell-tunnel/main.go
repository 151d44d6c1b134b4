// Package main implements shell-tunnel, a daemon/client pair that tunnels
// an interactive shell over a local unix socket.
//
// The daemon listens on a fixed, build-configured socket and spawns one
// shell per accepted connection, each attached to its own pseudo-terminal.
// The client attaches the invoking terminal to that socket so the session
// behaves like a local login under the daemon's privilege level.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var debugMode bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "shell-tunnel",
		Short: "Tunnel a shell through a unix socket",
		Long: `shell-tunnel exposes an interactive shell running under this process's
privilege level to any local peer, over a unix-domain socket.

The socket is world-connectable by design: a daemon started as root hands
a root shell to every local user who connects. Run it only where that is
the intent.`,
		Example: `  # Run the daemon (typically under the privilege level to export)
  shell-tunnel daemon

  # Attach this terminal to the daemon
  shell-tunnel client

  # Attach with local echo kept on
  shell-tunnel client --echo`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("specify a mode: daemon or client")
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	var logFile string
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the shell-tunnel daemon",
		Long: `Run the daemon: bind the socket, then spawn one shell per accepted
connection until interrupted. The daemon stays in the foreground; use your
service manager to background it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(logFile)
		},
	}
	daemonCmd.Flags().StringVar(&logFile, "log-file", "", "Write daemon logs to this file")

	var localEcho bool
	clientCmd := &cobra.Command{
		Use:   "client",
		Short: "Attach the local terminal to the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(cmd, localEcho)
		},
	}
	clientCmd.Flags().BoolVar(&localEcho, "echo", false, "Keep local echo enabled during the session")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage shell-tunnel configuration",
	}
	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfigPath()
		},
	}
	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetConfigToDefaults()
		},
	}
	configCmd.AddCommand(configPathCmd, configResetCmd)

	rootCmd.AddCommand(daemonCmd, clientCmd, statusCmd, configCmd)

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s", version, commit, date)),
	); err != nil {
		os.Exit(1)
	}
}
