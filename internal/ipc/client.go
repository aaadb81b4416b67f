package ipc

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"strings"
	"syscall"
	"time"

	"smartrefresh/internal/logging"
)

// DefaultSocketPath is the well-known address the daemon binds.
const DefaultSocketPath = "/tmp/smart-refresh.sock"

const defaultTimeout = 2 * time.Second

// Client performs single-shot command exchanges with the daemon socket.
// It is stateless per call: every Send dials a fresh connection, writes one
// framed request, reads one framed response, and closes the connection.
type Client struct {
	path    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient builds a client for the given socket path. A zero timeout uses
// the default two seconds.
func NewClient(path string, timeout time.Duration, logger *slog.Logger) *Client {
	if strings.TrimSpace(path) == "" {
		path = DefaultSocketPath
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		path:    path,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "ipc"),
	}
}

// Send performs one request/response round trip. Transport failures are
// mapped into error-shaped responses rather than returned; Send never
// retries and always releases the connection.
func (c *Client) Send(req Request) Response {
	payload, err := EncodeRequest(req)
	if err != nil {
		c.logger.Error("encode request", logging.Error(err))
		return Errorf("%v", err)
	}

	conn, err := net.DialTimeout("unix", c.path, c.timeout)
	if err != nil {
		return c.dialFailure(err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return c.transportFailure(err)
	}

	raw, err := readFrame(conn)
	if err != nil {
		return c.transportFailure(err)
	}

	body := strings.TrimSpace(string(raw))
	if body == "" {
		c.logger.Error("empty response from daemon", logging.String("socket", c.path))
		return Errorf("Empty response from daemon")
	}

	resp := decodeResponse([]byte(body))
	if resp.Payload == nil && resp.IsError() {
		c.logger.Error("invalid response from daemon", logging.String("detail", resp.Err))
	}
	return resp
}

// readFrame accumulates bytes until a newline is seen or the peer closes the
// connection.
func readFrame(conn net.Conn) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, 4096)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if bytes.IndexByte(buf, '\n') >= 0 {
				return buf, nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return nil, err
		}
	}
}

func (c *Client) dialFailure(err error) Response {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		c.logger.Error("socket not found", logging.String("socket", c.path))
		return Errorf("Daemon socket not found")
	case errors.Is(err, syscall.ECONNREFUSED):
		c.logger.Error("daemon not running or socket not available", logging.String("socket", c.path))
		return Errorf("Daemon not running")
	case isTimeout(err):
		c.logger.Error("connection timed out", logging.String("socket", c.path))
		return Errorf("Connection to daemon timed out")
	default:
		c.logger.Error("dial daemon socket", logging.String("socket", c.path), logging.Error(err))
		return Errorf("%v", err)
	}
}

func (c *Client) transportFailure(err error) Response {
	if isTimeout(err) {
		c.logger.Error("command timed out", logging.String("socket", c.path))
		return Errorf("Connection to daemon timed out")
	}
	c.logger.Error("socket exchange failed", logging.String("socket", c.path), logging.Error(err))
	return Errorf("%v", err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
