package main

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/compulab/shell-tunnel/internal/config"
	"github.com/compulab/shell-tunnel/internal/daemon"
	"github.com/shirou/gopsutil/v4/process"
)

// runStatus reports whether a daemon is reachable at the build-configured
// socket, and whether the PID it recorded is still alive.
func runStatus() error {
	running := daemon.IsRunning()

	pid := daemon.ReadPid("")
	pidState := "-"
	if pid > 0 {
		alive, err := process.PidExists(int32(pid))
		switch {
		case err != nil:
			pidState = fmt.Sprintf("%d (unknown: %v)", pid, err)
		case alive:
			pidState = strconv.Itoa(pid)
		default:
			pidState = fmt.Sprintf("%d (not running)", pid)
		}
	}

	state := "not running"
	if running {
		state = "running"
	}

	rows := [][]string{
		{"Socket", config.SocketPath},
		{"Daemon", state},
		{"PID", pidState},
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			baseStyle := lipgloss.NewStyle().Padding(0, 1)

			if col == 0 {
				return baseStyle.Bold(true).Foreground(lipgloss.Color("12"))
			}
			if row == 1 {
				if running {
					return baseStyle.Foreground(lipgloss.Color("10"))
				}
				return baseStyle.Foreground(lipgloss.Color("9"))
			}
			return baseStyle
		})

	fmt.Println(t.Render())
	return nil
}
