package main

import (
	"fmt"
	"strings"

	"github.com/compulab/shell-tunnel/internal/client"
	"github.com/compulab/shell-tunnel/internal/config"
	"github.com/compulab/shell-tunnel/internal/daemon"
	"github.com/compulab/shell-tunnel/internal/logging"
	"github.com/spf13/cobra"
)

func runDaemon(logFile string) error {
	cfg, err := config.LoadUserConfig()
	if err != nil {
		logging.Errorf("failed to load config, using defaults: %v", err)
	}

	if debugMode {
		logging.SetLevel(logging.LevelDebug)
	} else {
		logging.SetLevel(logging.ParseLevel(cfg.Daemon.LogLevel))
	}

	if logFile == "" {
		logFile = cfg.Daemon.LogFile
	}
	if logFile != "" {
		f, err := logging.OpenLogFile(logFile)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
	}

	d := daemon.New(daemon.Config{})
	return d.Run()
}

func runClient(cmd *cobra.Command, localEcho bool) error {
	cfg, err := config.LoadUserConfig()
	if err != nil {
		logging.Errorf("failed to load config, using defaults: %v", err)
	}

	if debugMode {
		logging.SetLevel(logging.LevelDebug)
	} else {
		logging.SetLevel(logging.LevelOff)
	}

	if !cmd.Flags().Changed("echo") {
		localEcho = cfg.Client.LocalEcho
	}

	p := &client.Proxy{LocalEcho: localEcho}
	return p.Run()
}

func printConfigPath() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func resetConfigToDefaults() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	fmt.Printf("This will overwrite the configuration at:\n  %s\n\n", path)
	fmt.Printf("Reset to defaults? (yes/no): ")

	var response string
	_, _ = fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	if response != "yes" && response != "y" {
		fmt.Println("Reset cancelled.")
		return nil
	}

	written, err := config.WriteDefaultConfig()
	if err != nil {
		return err
	}
	fmt.Printf("Configuration reset to defaults\n  Location: %s\n", written)
	return nil
}
