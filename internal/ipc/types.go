package ipc

import (
	"encoding/json"
	"fmt"
)

// Request is one daemon command. Each implementation carries exactly the
// fields its wire command defines; EncodeRequest injects the "command"
// discriminator so a mistyped field set cannot reach the wire.
type Request interface {
	command() string
}

// GetStatusRequest fetches daemon status and current configuration.
type GetStatusRequest struct{}

func (GetStatusRequest) command() string { return "GetStatus" }

// SetConfigRequest updates the full refresh-rate configuration. The daemon
// requires all three fields atomically.
type SetConfigRequest struct {
	MinHz       int    `json:"min_hz"`
	MaxHz       int    `json:"max_hz"`
	Sensitivity string `json:"sensitivity"`
}

func (SetConfigRequest) command() string { return "SetConfig" }

// StartRequest enables the refresh-rate control loop.
type StartRequest struct{}

func (StartRequest) command() string { return "Start" }

// StopRequest disables the refresh-rate control loop.
type StopRequest struct{}

func (StopRequest) command() string { return "Stop" }

// SetDeviceModeRequest selects hardware-specific throttling (oled, lcd, or
// custom).
type SetDeviceModeRequest struct {
	Mode string `json:"mode"`
}

func (SetDeviceModeRequest) command() string { return "SetDeviceMode" }

// EncodeRequest serializes a request to its wire form: one JSON object with
// the command discriminator merged into the command-specific fields.
func EncodeRequest(req Request) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("flatten request: %w", err)
	}
	fields["command"] = req.command()
	return json.Marshal(fields)
}

// Response is one decoded daemon reply: either an opaque success payload or
// an error string. Transport failures produce the same error shape as
// daemon-reported rejections, so callers handle both through Err alone.
type Response struct {
	Payload map[string]any
	Err     string
}

// IsError reports whether the response carries an error instead of a
// success payload.
func (r Response) IsError() bool { return r.Err != "" }

// Message returns the daemon's human-readable message field, if present.
func (r Response) Message() string {
	msg, _ := r.Payload["message"].(string)
	return msg
}

// ConfigSensitivity extracts config.sensitivity from a status payload.
func (r Response) ConfigSensitivity() (string, bool) {
	cfg, ok := r.Payload["config"].(map[string]any)
	if !ok {
		return "", false
	}
	value, ok := cfg["sensitivity"].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Errorf builds an error-shaped response for transport failures.
func Errorf(format string, args ...any) Response {
	return Response{Err: fmt.Sprintf(format, args...)}
}

func decodeResponse(data []byte) Response {
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return Errorf("Invalid response from daemon: %v", err)
	}
	resp := Response{Payload: fields}
	if msg, ok := fields["error"].(string); ok {
		resp.Err = msg
	}
	return resp
}
