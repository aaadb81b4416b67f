// Package journal persists supervisor lifecycle events in SQLite.
//
// Each spawn and stop outcome becomes one append-only row, surfaced through
// `smartrefresh history`. The journal is observability only: nothing reads
// it back to restore state, and disabling it in config changes no behavior.
package journal
