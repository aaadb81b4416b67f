package journal_test

import (
	"context"
	"testing"

	"smartrefresh/internal/journal"
	"smartrefresh/internal/testsupport"
)

func TestRecordAndRecent(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJournal())
	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if _, err := store.Record(ctx, journal.KindSpawned, 100, "/opt/bin/daemon"); err != nil {
		t.Fatalf("Record spawned: %v", err)
	}
	if _, err := store.Record(ctx, journal.KindStopClean, 100, ""); err != nil {
		t.Fatalf("Record stop: %v", err)
	}

	events, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != journal.KindStopClean {
		t.Fatalf("newest event kind = %s", events[0].Kind)
	}
	if events[1].Kind != journal.KindSpawned || events[1].PID != 100 {
		t.Fatalf("oldest event = %+v", events[1])
	}
	if events[0].ID == events[1].ID {
		t.Fatal("event ids must be unique")
	}
}

func TestRecentLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJournal())
	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := store.Record(ctx, journal.KindSpawnRejected, 0, "daemon already running"); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	events, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("limit not applied, got %d events", len(events))
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithJournal())
	ctx := context.Background()

	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	if _, err := store.Record(ctx, journal.KindSpawned, 7, ""); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() {
		_ = reopened.Close()
	})
	events, err := reopened.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 || events[0].PID != 7 {
		t.Fatalf("events after reopen: %+v", events)
	}
}
