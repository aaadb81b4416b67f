package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"smartrefresh/internal/config"
)

// Lifecycle event kinds recorded by the supervisor.
const (
	KindSpawned         = "spawned"
	KindSpawnFailed     = "spawn_failed"
	KindSpawnRejected   = "spawn_rejected"
	KindStopClean       = "stop_clean"
	KindStopForced      = "stop_forced"
	KindStopUnconfirmed = "stop_unconfirmed"
	KindStopAlreadyGone = "stop_already_gone"
)

// Event is one recorded lifecycle transition.
type Event struct {
	ID        string
	Timestamp time.Time
	Kind      string
	PID       int
	Detail    string
}

// Store persists lifecycle events in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    kind TEXT NOT NULL,
    pid INTEGER NOT NULL DEFAULT 0,
    detail TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);
`

// Open initializes or connects to the journal database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.JournalPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the backing database location.
func (s *Store) Path() string { return s.path }

// Record appends one lifecycle event.
func (s *Store) Record(ctx context.Context, kind string, pid int, detail string) (Event, error) {
	event := Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		PID:       pid,
		Detail:    detail,
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO events (id, created_at, kind, pid, detail) VALUES (?, ?, ?, ?, ?)`,
		event.ID,
		event.Timestamp.Format(time.RFC3339Nano),
		event.Kind,
		event.PID,
		event.Detail,
	)
	if err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, created_at, kind, pid, detail FROM events ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var createdAt string
		if err := rows.Scan(&event.ID, &createdAt, &event.Kind, &event.PID, &event.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse event timestamp %q: %w", createdAt, err)
		}
		event.Timestamp = parsed
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
