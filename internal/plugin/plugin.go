package plugin

import (
	"context"
	"errors"
	"log/slog"

	"smartrefresh/internal/config"
	"smartrefresh/internal/ipc"
	"smartrefresh/internal/journal"
	"smartrefresh/internal/logging"
	"smartrefresh/internal/proxy"
	"smartrefresh/internal/supervisor"
)

// Plugin is the embedding surface: one object wiring the supervisor, the
// command proxy, and the lifecycle journal behind the operations a frontend
// calls. Methods return the daemon's response shape directly so callers see
// the same errors the CLI prints.
type Plugin struct {
	cfg        *config.Config
	logger     *slog.Logger
	journal    *journal.Store
	supervisor *supervisor.Supervisor
	proxy      *proxy.Proxy
}

// New assembles a plugin from configuration. A journal that fails to open
// degrades to logging a warning; lifecycle control must not depend on
// observability storage.
func New(cfg *config.Config, logger *slog.Logger) *Plugin {
	log := logging.NewComponentLogger(logger, "plugin")

	var store *journal.Store
	if cfg.Journal.Enabled {
		opened, err := journal.Open(cfg)
		if err != nil {
			log.Warn("lifecycle journal unavailable", logging.Error(err))
		} else {
			store = opened
		}
	}

	client := ipc.NewClient(cfg.Paths.SocketPath, cfg.SocketTimeout(), logger)
	return &Plugin{
		cfg:        cfg,
		logger:     log,
		journal:    store,
		supervisor: supervisor.New(cfg, store, logger),
		proxy:      proxy.New(client, logger),
	}
}

// Load spawns the daemon as part of host startup. Errors are logged, never
// returned: a frontend reload against an already-running daemon is routine,
// and a failed launch must not block the rest of the host.
func (p *Plugin) Load() {
	if err := p.supervisor.Spawn(); err != nil {
		if errors.Is(err, supervisor.ErrAlreadyRunning) {
			p.logger.Info("daemon already running, keeping existing process")
		} else {
			p.logger.Error("daemon launch during load failed", logging.Error(err))
		}
		return
	}
	p.logger.Info("plugin loaded", logging.String("socket", p.cfg.Paths.SocketPath))
}

// Unload stops any daemon this plugin spawned and releases the journal.
// Errors are logged, never surfaced: unload runs during teardown where no
// caller can act on a failure.
func (p *Plugin) Unload() {
	outcome, err := p.supervisor.Stop()
	if err != nil {
		p.logger.Error("daemon stop during unload failed", logging.Error(err))
	} else {
		p.logger.Info("plugin unloaded", logging.String("stop_outcome", outcome.String()))
	}
	if err := p.journal.Close(); err != nil {
		p.logger.Warn("close journal", logging.Error(err))
	}
}

// SpawnDaemon launches the daemon process.
func (p *Plugin) SpawnDaemon() error {
	return p.supervisor.Spawn()
}

// StopDaemon terminates the daemon process.
func (p *Plugin) StopDaemon() (supervisor.StopOutcome, error) {
	return p.supervisor.Stop()
}

// DaemonRunning reports whether a tracked daemon process is alive.
func (p *Plugin) DaemonRunning() bool {
	return p.supervisor.Running()
}

// GetStatus returns the daemon's status payload.
func (p *Plugin) GetStatus() ipc.Response {
	return p.proxy.Status()
}

// SetSettings pushes a complete configuration triple.
func (p *Plugin) SetSettings(minHz, maxHz int, sensitivity string) ipc.Response {
	return p.proxy.SetConfig(minHz, maxHz, sensitivity)
}

// SetRange updates the refresh bounds while preserving sensitivity.
func (p *Plugin) SetRange(minHz, maxHz int) ipc.Response {
	return p.proxy.SetRange(minHz, maxHz)
}

// SetEnabled starts or stops the control loop.
func (p *Plugin) SetEnabled(enabled bool) ipc.Response {
	return p.proxy.SetEnabled(enabled)
}

// StartLoop enables the control loop.
func (p *Plugin) StartLoop() ipc.Response {
	return p.proxy.Start()
}

// StopLoop disables the control loop.
func (p *Plugin) StopLoop() ipc.Response {
	return p.proxy.Stop()
}

// SetDeviceMode selects the hardware profile.
func (p *Plugin) SetDeviceMode(mode string) ipc.Response {
	return p.proxy.SetDeviceMode(mode)
}

// History returns recent lifecycle events, newest first. With the journal
// disabled it returns no events and no error.
func (p *Plugin) History(ctx context.Context, limit int) ([]journal.Event, error) {
	if p.journal == nil {
		return nil, nil
	}
	return p.journal.Recent(ctx, limit)
}
