// Package ipc implements the newline-framed JSON protocol spoken by the
// smart-refresh daemon over its Unix socket.
//
// Requests are a closed set of typed commands; responses are either an
// opaque success payload or an error string. The client maps every transport
// failure (missing socket, refused connection, timeout, malformed reply)
// into the same error shape the daemon itself uses, so callers treat "daemon
// said no" and "could not reach daemon" identically.
//
// One connection carries exactly one request and one response. Retry policy,
// if wanted, belongs to the caller.
package ipc
