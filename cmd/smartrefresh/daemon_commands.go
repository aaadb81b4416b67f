package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"smartrefresh/internal/ipc"
	"smartrefresh/internal/supervisor"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Launch the smart-refresh daemon process",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			// A daemon answering on the socket wins over any local
			// bookkeeping: it may have been launched by another process.
			if resp := ctx.newProxy().Status(); !resp.IsError() {
				fmt.Fprintln(stdout, "Daemon already running")
				return nil
			}

			sup, err := ctx.newSupervisor()
			if err != nil {
				return err
			}
			if err := sup.Spawn(); err != nil {
				if errors.Is(err, supervisor.ErrAlreadyRunning) {
					fmt.Fprintln(stdout, "Daemon already running")
					return nil
				}
				return err
			}
			fmt.Fprintln(stdout, "Daemon started")
			return nil
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Terminate the smart-refresh daemon process",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			sup, err := ctx.newSupervisor()
			if err != nil {
				return err
			}
			outcome, err := sup.Stop()
			if err != nil {
				return err
			}
			switch outcome {
			case supervisor.StopNone:
				fmt.Fprintln(stdout, "Daemon is not running")
			case supervisor.StopAlreadyGone:
				fmt.Fprintln(stdout, "Daemon had already exited")
			case supervisor.StopClean:
				fmt.Fprintln(stdout, "Daemon stopped")
			case supervisor.StopForced:
				fmt.Fprintln(stdout, "Daemon did not stop gracefully; process killed")
			case supervisor.StopUnconfirmed:
				fmt.Fprintln(stdout, "Daemon termination could not be confirmed")
			}
			return nil
		},
	}

	return []*cobra.Command{upCmd, downCmd}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			resp := ctx.newProxy().Status()

			for _, line := range renderSectionHeader("Daemon Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if resp.IsError() {
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusError, resp.Err, colorize))
				return nil
			}

			fmt.Fprintln(stdout, renderStatusLine("Daemon", statusOK, "running", colorize))
			if enabled, ok := resp.Payload["enabled"].(bool); ok {
				kind := statusInfo
				detail := "control loop disabled"
				if enabled {
					kind = statusOK
					detail = "control loop enabled"
				}
				fmt.Fprintln(stdout, renderStatusLine("Control loop", kind, detail, colorize))
			}
			if hz, ok := resp.Payload["current_hz"].(float64); ok {
				fmt.Fprintln(stdout, renderStatusLine("Refresh rate", statusInfo, fmt.Sprintf("%.0f Hz", hz), colorize))
			}

			rows := buildConfigRows(resp)
			if len(rows) == 0 {
				return nil
			}
			fmt.Fprintln(stdout)
			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout, renderTable([]string{"Setting", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

// buildConfigRows flattens the status payload's config object into display
// rows. Unknown keys pass through so daemon additions show up without a CLI
// change.
func buildConfigRows(resp ipc.Response) [][]string {
	cfg, ok := resp.Payload["config"].(map[string]any)
	if !ok {
		return nil
	}

	var rows [][]string
	appendRow := func(label, key string) {
		value, present := cfg[key]
		if !present {
			return
		}
		rows = append(rows, []string{label, formatConfigValue(value)})
		delete(cfg, key)
	}
	appendRow("Min Hz", "min_hz")
	appendRow("Max Hz", "max_hz")
	appendRow("Sensitivity", "sensitivity")
	appendRow("Device mode", "device_mode")
	rest := make([]string, 0, len(cfg))
	for key := range cfg {
		rest = append(rest, key)
	}
	sort.Strings(rest)
	for _, key := range rest {
		rows = append(rows, []string{key, formatConfigValue(cfg[key])})
	}
	return rows
}

func formatConfigValue(value any) string {
	switch v := value.(type) {
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case string:
		return v
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprintf("%v", v)
	}
}
