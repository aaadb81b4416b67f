package proxy

import (
	"log/slog"
	"sync"

	"smartrefresh/internal/ipc"
	"smartrefresh/internal/logging"
)

// DefaultSensitivity is substituted when a range update cannot learn the
// daemon's current sensitivity.
const DefaultSensitivity = "balanced"

// Proxy translates high-level control operations into daemon commands. It
// owns no state beyond serialization of compound updates; the daemon remains
// the source of truth for configuration.
type Proxy struct {
	client *ipc.Client
	logger *slog.Logger

	// rangeMu serializes read-modify-write range updates so two concurrent
	// SetRange calls cannot interleave their status read and config write.
	rangeMu sync.Mutex
}

// New builds a proxy over the given IPC client.
func New(client *ipc.Client, logger *slog.Logger) *Proxy {
	return &Proxy{
		client: client,
		logger: logging.NewComponentLogger(logger, "proxy"),
	}
}

// Status fetches the daemon's status and current configuration.
func (p *Proxy) Status() ipc.Response {
	return p.client.Send(ipc.GetStatusRequest{})
}

// Start enables the refresh-rate control loop.
func (p *Proxy) Start() ipc.Response {
	return p.client.Send(ipc.StartRequest{})
}

// Stop disables the refresh-rate control loop.
func (p *Proxy) Stop() ipc.Response {
	return p.client.Send(ipc.StopRequest{})
}

// SetEnabled dispatches to Start or Stop based on the desired state.
func (p *Proxy) SetEnabled(enabled bool) ipc.Response {
	if enabled {
		return p.Start()
	}
	return p.Stop()
}

// SetConfig pushes a complete refresh configuration to the daemon.
func (p *Proxy) SetConfig(minHz, maxHz int, sensitivity string) ipc.Response {
	return p.client.Send(ipc.SetConfigRequest{MinHz: minHz, MaxHz: maxHz, Sensitivity: sensitivity})
}

// SetRange updates only the refresh bounds, preserving the daemon's current
// sensitivity. The daemon accepts configuration solely as a full triple, so
// the current sensitivity is read back first; when it cannot be determined
// the balanced default is substituted rather than failing the range update.
func (p *Proxy) SetRange(minHz, maxHz int) ipc.Response {
	p.rangeMu.Lock()
	defer p.rangeMu.Unlock()

	sensitivity := DefaultSensitivity
	status := p.Status()
	if current, ok := status.ConfigSensitivity(); ok {
		sensitivity = current
	} else {
		p.logger.Warn("current sensitivity unavailable, using default",
			logging.String("default", DefaultSensitivity),
			logging.String("status_error", status.Err))
	}
	return p.SetConfig(minHz, maxHz, sensitivity)
}

// SetDeviceMode selects the hardware profile (oled, lcd, or custom).
func (p *Proxy) SetDeviceMode(mode string) ipc.Response {
	return p.client.Send(ipc.SetDeviceModeRequest{Mode: mode})
}
