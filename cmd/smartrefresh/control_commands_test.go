package main

import (
	"testing"

	"smartrefresh/internal/testsupport"
)

func TestEnableDisable(t *testing.T) {
	env := setupCLITestEnv(t)
	daemon := testsupport.StartFakeDaemon(t, env.socketPath, func(command string, fields map[string]any) any {
		return map[string]any{"success": true}
	})

	out, _, err := runCLI(t, []string{"enable"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("enable: %v", err)
	}
	requireContains(t, out, "enabled")

	out, _, err = runCLI(t, []string{"disable"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	requireContains(t, out, "disabled")

	requests := daemon.Requests()
	if len(requests) != 2 || requests[0]["command"] != "Start" || requests[1]["command"] != "Stop" {
		t.Fatalf("unexpected commands: %#v", requests)
	}
}

func TestSetRangeSendsStatusThenConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	daemon := testsupport.StartFakeDaemon(t, env.socketPath, func(command string, fields map[string]any) any {
		if command == "GetStatus" {
			return map[string]any{"config": map[string]any{"sensitivity": "conservative"}}
		}
		return map[string]any{"success": true}
	})

	out, _, err := runCLI(t, []string{"set-range", "45", "90"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("set-range: %v", err)
	}
	requireContains(t, out, "45-90")

	requests := daemon.Requests()
	if len(requests) != 2 {
		t.Fatalf("expected two requests, got %d", len(requests))
	}
	write := requests[1]
	if write["command"] != "SetConfig" || write["sensitivity"] != "conservative" {
		t.Fatalf("unexpected write: %#v", write)
	}
}

func TestSetRangeRejectsBadArguments(t *testing.T) {
	env := setupCLITestEnv(t)

	cases := [][]string{
		{"set-range", "abc", "90"},
		{"set-range", "45", "xyz"},
		{"set-range", "0", "90"},
		{"set-range", "90", "45"},
	}
	for _, args := range cases {
		if _, _, err := runCLI(t, args, env.socketPath, env.configPath); err == nil {
			t.Fatalf("expected failure for args %v", args)
		}
	}
}

func TestSetConfigForwardsTriple(t *testing.T) {
	env := setupCLITestEnv(t)
	daemon := testsupport.StartFakeDaemon(t, env.socketPath, func(command string, fields map[string]any) any {
		return map[string]any{"success": true, "message": "Config updated"}
	})

	out, _, err := runCLI(t, []string{"set-config", "40", "120", "aggressive"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("set-config: %v", err)
	}
	requireContains(t, out, "Config updated")

	requests := daemon.Requests()
	if len(requests) != 1 || requests[0]["command"] != "SetConfig" {
		t.Fatalf("requests = %#v", requests)
	}
	if requests[0]["sensitivity"] != "aggressive" {
		t.Fatalf("sensitivity = %v", requests[0]["sensitivity"])
	}
}

func TestSetModeForwardsAndNormalizes(t *testing.T) {
	env := setupCLITestEnv(t)
	daemon := testsupport.StartFakeDaemon(t, env.socketPath, func(command string, fields map[string]any) any {
		return map[string]any{"success": true}
	})

	out, _, err := runCLI(t, []string{"set-mode", "OLED"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("set-mode: %v", err)
	}
	requireContains(t, out, "oled")

	requests := daemon.Requests()
	if len(requests) != 1 || requests[0]["mode"] != "oled" {
		t.Fatalf("requests = %#v", requests)
	}
}

func TestDaemonErrorBecomesCommandError(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.StartFakeDaemon(t, env.socketPath, func(command string, fields map[string]any) any {
		return map[string]any{"error": "Invalid mode 'plasma'"}
	})

	_, _, err := runCLI(t, []string{"set-mode", "plasma"}, env.socketPath, env.configPath)
	if err == nil || err.Error() != "Invalid mode 'plasma'" {
		t.Fatalf("err = %v", err)
	}
}
