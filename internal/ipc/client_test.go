package ipc_test

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"smartrefresh/internal/ipc"
	"smartrefresh/internal/testsupport"
)

func TestRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.StartFakeDaemon(t, cfg.Paths.SocketPath, func(command string, fields map[string]any) any {
		return map[string]any{"ok": true}
	})

	client := ipc.NewClient(cfg.Paths.SocketPath, time.Second, nil)
	resp := client.Send(ipc.GetStatusRequest{})
	if resp.IsError() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}
	if resp.Payload["ok"] != true {
		t.Fatalf("unexpected payload: %#v", resp.Payload)
	}
}

func TestRequestEncoding(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	daemon := testsupport.StartFakeDaemon(t, cfg.Paths.SocketPath, func(command string, fields map[string]any) any {
		return map[string]any{"success": true}
	})

	client := ipc.NewClient(cfg.Paths.SocketPath, time.Second, nil)
	resp := client.Send(ipc.SetConfigRequest{MinHz: 40, MaxHz: 90, Sensitivity: "aggressive"})
	if resp.IsError() {
		t.Fatalf("unexpected error: %s", resp.Err)
	}

	requests := daemon.Requests()
	if len(requests) != 1 {
		t.Fatalf("expected one request, got %d", len(requests))
	}
	req := requests[0]
	if req["command"] != "SetConfig" {
		t.Fatalf("command = %v", req["command"])
	}
	if req["min_hz"] != float64(40) || req["max_hz"] != float64(90) {
		t.Fatalf("range fields wrong: %#v", req)
	}
	if req["sensitivity"] != "aggressive" {
		t.Fatalf("sensitivity = %v", req["sensitivity"])
	}
}

func TestSocketNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sock")
	client := ipc.NewClient(path, 200*time.Millisecond, nil)

	for i := 0; i < 2; i++ {
		resp := client.Send(ipc.GetStatusRequest{})
		if resp.Err != "Daemon socket not found" {
			t.Fatalf("attempt %d: err = %q", i, resp.Err)
		}
	}
}

func TestConnectionRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.sock")

	// Bind without listening, then close the descriptor. The socket file
	// stays behind with nobody accepting, which is exactly the stale state
	// a crashed daemon leaves.
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socket: %v", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := unix.Close(fd); err != nil {
		t.Fatalf("close: %v", err)
	}

	client := ipc.NewClient(path, 200*time.Millisecond, nil)
	resp := client.Send(ipc.GetStatusRequest{})
	if resp.Err != "Daemon not running" {
		t.Fatalf("err = %q", resp.Err)
	}
}

func TestEmptyResponse(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.StartFakeDaemon(t, cfg.Paths.SocketPath, func(string, map[string]any) any {
		return nil
	})

	client := ipc.NewClient(cfg.Paths.SocketPath, time.Second, nil)
	resp := client.Send(ipc.GetStatusRequest{})
	if resp.Err != "Empty response from daemon" {
		t.Fatalf("err = %q", resp.Err)
	}
}

func TestInvalidResponse(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.StartFakeDaemon(t, cfg.Paths.SocketPath, func(string, map[string]any) any {
		return []byte("{not json}\n")
	})

	client := ipc.NewClient(cfg.Paths.SocketPath, time.Second, nil)
	resp := client.Send(ipc.GetStatusRequest{})
	if !strings.HasPrefix(resp.Err, "Invalid response from daemon") {
		t.Fatalf("err = %q", resp.Err)
	}
}

func TestReadTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.StartFakeDaemon(t, cfg.Paths.SocketPath, func(string, map[string]any) any {
		time.Sleep(600 * time.Millisecond)
		return nil
	})

	client := ipc.NewClient(cfg.Paths.SocketPath, 150*time.Millisecond, nil)
	resp := client.Send(ipc.GetStatusRequest{})
	if resp.Err != "Connection to daemon timed out" {
		t.Fatalf("err = %q", resp.Err)
	}
}

func TestDaemonErrorPassthrough(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.StartFakeDaemon(t, cfg.Paths.SocketPath, func(string, map[string]any) any {
		return map[string]any{"success": false, "error": "Invalid sensitivity 'extreme'"}
	})

	client := ipc.NewClient(cfg.Paths.SocketPath, time.Second, nil)
	resp := client.Send(ipc.SetConfigRequest{MinHz: 40, MaxHz: 90, Sensitivity: "extreme"})
	if resp.Err != "Invalid sensitivity 'extreme'" {
		t.Fatalf("err = %q", resp.Err)
	}
}

func TestConfigSensitivity(t *testing.T) {
	var resp ipc.Response
	if err := json.Unmarshal([]byte(`{"running":true,"config":{"sensitivity":"aggressive"}}`), &resp.Payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	value, ok := resp.ConfigSensitivity()
	if !ok || value != "aggressive" {
		t.Fatalf("got %q, %v", value, ok)
	}

	var bare ipc.Response
	if err := json.Unmarshal([]byte(`{"running":true}`), &bare.Payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := bare.ConfigSensitivity(); ok {
		t.Fatal("expected absent sensitivity")
	}
}
