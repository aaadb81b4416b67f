// Package plugin assembles the control plane behind a single embedding
// surface: process lifecycle through the supervisor, daemon commands through
// the proxy, and history through the journal.
package plugin
