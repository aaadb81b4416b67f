// Package main hosts the smartrefresh CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into daemon
// process control (up, down), IPC commands against the running daemon
// (status, enable, set-range, set-mode), lifecycle history queries, and
// configuration scaffolding. Configuration resolution and socket discovery
// live in commandContext so subcommands stay declarative; the heavy lifting
// sits in the internal packages.
package main
