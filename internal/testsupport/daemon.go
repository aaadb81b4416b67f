package testsupport

import (
	"bufio"
	"encoding/json"
	"net"
	"sync"
	"testing"
)

// Handler produces the reply for one decoded request. Returning nil closes
// the connection without writing anything; returning a []byte writes the
// bytes verbatim (no newline added); any other value is JSON-encoded and
// newline-terminated.
type Handler func(command string, fields map[string]any) any

// FakeDaemon is a scripted Unix-socket server standing in for the
// smart-refresh daemon. It records every decoded request for assertions.
type FakeDaemon struct {
	t        testing.TB
	listener net.Listener

	mu       sync.Mutex
	requests []map[string]any
	closed   bool
}

// StartFakeDaemon binds the socket path and serves connections until the
// test ends.
func StartFakeDaemon(t testing.TB, socketPath string, handler Handler) *FakeDaemon {
	t.Helper()

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen on %s: %v", socketPath, err)
	}
	d := &FakeDaemon{t: t, listener: listener}
	go d.serve(handler)
	t.Cleanup(d.Close)
	return d
}

// Close stops accepting connections and removes the socket.
func (d *FakeDaemon) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()
	_ = d.listener.Close()
}

// Requests returns a copy of all decoded requests received so far.
func (d *FakeDaemon) Requests() []map[string]any {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]map[string]any, len(d.requests))
	copy(out, d.requests)
	return out
}

func (d *FakeDaemon) serve(handler Handler) {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			return
		}
		go d.handle(conn, handler)
	}
}

func (d *FakeDaemon) handle(conn net.Conn, handler Handler) {
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return
	}

	fields := map[string]any{}
	if err := json.Unmarshal(line, &fields); err != nil {
		d.t.Errorf("fake daemon received invalid JSON: %v", err)
		return
	}
	command, _ := fields["command"].(string)

	d.mu.Lock()
	d.requests = append(d.requests, fields)
	d.mu.Unlock()

	if handler == nil {
		return
	}
	switch reply := handler(command, fields).(type) {
	case nil:
	case []byte:
		_, _ = conn.Write(reply)
	default:
		encoded, err := json.Marshal(reply)
		if err != nil {
			d.t.Errorf("fake daemon reply encode: %v", err)
			return
		}
		_, _ = conn.Write(append(encoded, '\n'))
	}
}
