// Package proxy exposes the daemon's command surface as typed operations.
//
// Most calls are one-to-one forwards over IPC. SetRange is the exception: it
// composes a status read with a config write under a mutex so concurrent
// range updates cannot clobber each other's view of the sensitivity.
package proxy
