package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"smartrefresh/internal/ipc"
)

func newControlCommands(ctx *commandContext) []*cobra.Command {
	enableCmd := &cobra.Command{
		Use:   "enable",
		Short: "Enable automatic refresh-rate control",
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportResponse(cmd, ctx.newProxy().SetEnabled(true), "Refresh-rate control enabled")
		},
	}

	disableCmd := &cobra.Command{
		Use:   "disable",
		Short: "Disable automatic refresh-rate control",
		RunE: func(cmd *cobra.Command, args []string) error {
			return reportResponse(cmd, ctx.newProxy().SetEnabled(false), "Refresh-rate control disabled")
		},
	}

	setRangeCmd := &cobra.Command{
		Use:   "set-range <min-hz> <max-hz>",
		Short: "Update the refresh-rate bounds, keeping the current sensitivity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minHz, maxHz, err := parseRange(args[0], args[1])
			if err != nil {
				return err
			}
			resp := ctx.newProxy().SetRange(minHz, maxHz)
			return reportResponse(cmd, resp, fmt.Sprintf("Refresh range set to %d-%d Hz", minHz, maxHz))
		},
	}

	setConfigCmd := &cobra.Command{
		Use:   "set-config <min-hz> <max-hz> <sensitivity>",
		Short: "Replace the full refresh configuration",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			minHz, maxHz, err := parseRange(args[0], args[1])
			if err != nil {
				return err
			}
			sensitivity := strings.TrimSpace(args[2])
			if sensitivity == "" {
				return fmt.Errorf("sensitivity must not be empty")
			}
			resp := ctx.newProxy().SetConfig(minHz, maxHz, sensitivity)
			return reportResponse(cmd, resp, fmt.Sprintf("Configuration set to %d-%d Hz, sensitivity %s", minHz, maxHz, sensitivity))
		},
	}

	setModeCmd := &cobra.Command{
		Use:   "set-mode <oled|lcd|custom>",
		Short: "Select the hardware device profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := strings.ToLower(strings.TrimSpace(args[0]))
			resp := ctx.newProxy().SetDeviceMode(mode)
			return reportResponse(cmd, resp, fmt.Sprintf("Device mode set to %s", mode))
		},
	}

	return []*cobra.Command{enableCmd, disableCmd, setRangeCmd, setConfigCmd, setModeCmd}
}

func parseRange(minArg, maxArg string) (int, int, error) {
	minHz, err := strconv.Atoi(strings.TrimSpace(minArg))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minimum %q: expected an integer Hz value", minArg)
	}
	maxHz, err := strconv.Atoi(strings.TrimSpace(maxArg))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid maximum %q: expected an integer Hz value", maxArg)
	}
	if minHz <= 0 || maxHz <= 0 {
		return 0, 0, fmt.Errorf("refresh rates must be positive, got %d and %d", minHz, maxHz)
	}
	if minHz > maxHz {
		return 0, 0, fmt.Errorf("minimum %d exceeds maximum %d", minHz, maxHz)
	}
	return minHz, maxHz, nil
}

// reportResponse prints the daemon's message when it sent one, the fallback
// otherwise, and converts daemon errors into command failures.
func reportResponse(cmd *cobra.Command, resp ipc.Response, fallback string) error {
	if resp.IsError() {
		return fmt.Errorf("%s", resp.Err)
	}
	message := strings.TrimSpace(resp.Message())
	if message == "" {
		message = fallback
	}
	fmt.Fprintln(cmd.OutOrStdout(), message)
	return nil
}
