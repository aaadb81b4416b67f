package plugin_test

import (
	"context"
	"testing"

	"smartrefresh/internal/journal"
	"smartrefresh/internal/logging"
	"smartrefresh/internal/plugin"
	"smartrefresh/internal/supervisor"
	"smartrefresh/internal/testsupport"
)

const cooperativeScript = `#!/bin/sh
trap 'exit 0' TERM
while :; do
    sleep 0.1
done
`

func TestGetStatusForwards(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.StartFakeDaemon(t, cfg.Paths.SocketPath, func(command string, fields map[string]any) any {
		return map[string]any{"running": true, "enabled": false}
	})

	p := plugin.New(cfg, logging.NewNop())
	resp := p.GetStatus()
	if resp.IsError() {
		t.Fatalf("GetStatus: %s", resp.Err)
	}
	if resp.Payload["running"] != true {
		t.Fatalf("payload = %#v", resp.Payload)
	}
}

func TestSetSettingsForwards(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	daemon := testsupport.StartFakeDaemon(t, cfg.Paths.SocketPath, func(command string, fields map[string]any) any {
		return map[string]any{"success": true}
	})

	p := plugin.New(cfg, logging.NewNop())
	if resp := p.SetSettings(40, 90, "conservative"); resp.IsError() {
		t.Fatalf("SetSettings: %s", resp.Err)
	}

	requests := daemon.Requests()
	if len(requests) != 1 || requests[0]["command"] != "SetConfig" {
		t.Fatalf("requests = %#v", requests)
	}
	if requests[0]["sensitivity"] != "conservative" {
		t.Fatalf("sensitivity = %v", requests[0]["sensitivity"])
	}
}

func TestTransportErrorsSurfaceThroughResponse(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := plugin.New(cfg, logging.NewNop())

	resp := p.GetStatus()
	if resp.Err != "Daemon socket not found" {
		t.Fatalf("err = %q", resp.Err)
	}
}

func TestLifecycleRecordedInJournal(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJournal())
	testsupport.WriteDaemonStub(t, cfg, cooperativeScript)

	p := plugin.New(cfg, logging.NewNop())
	if err := p.SpawnDaemon(); err != nil {
		t.Fatalf("SpawnDaemon: %v", err)
	}
	if !p.DaemonRunning() {
		t.Fatal("daemon should be running")
	}

	outcome, err := p.StopDaemon()
	if err != nil {
		t.Fatalf("StopDaemon: %v", err)
	}
	if outcome != supervisor.StopClean {
		t.Fatalf("outcome = %s", outcome)
	}

	events, err := p.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected spawn and stop events, got %d", len(events))
	}
	if events[0].Kind != journal.KindStopClean || events[1].Kind != journal.KindSpawned {
		t.Fatalf("events = %#v", events)
	}
}

func TestHistoryWithJournalDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := plugin.New(cfg, logging.NewNop())

	events, err := p.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestLoadSpawnsAndUnloadStops(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteDaemonStub(t, cfg, cooperativeScript)

	p := plugin.New(cfg, logging.NewNop())
	p.Load()
	if !p.DaemonRunning() {
		t.Fatal("daemon should be running after load")
	}
	p.Unload()
	if p.DaemonRunning() {
		t.Fatal("daemon should be stopped after unload")
	}
}

func TestLoadToleratesRunningDaemon(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteDaemonStub(t, cfg, cooperativeScript)

	p := plugin.New(cfg, logging.NewNop())
	if err := p.SpawnDaemon(); err != nil {
		t.Fatalf("SpawnDaemon: %v", err)
	}
	defer p.Unload()

	p.Load()
	if !p.DaemonRunning() {
		t.Fatal("existing daemon must survive a reload")
	}
}
