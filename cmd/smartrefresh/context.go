package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"smartrefresh/internal/config"
	"smartrefresh/internal/ipc"
	"smartrefresh/internal/journal"
	"smartrefresh/internal/logging"
	"smartrefresh/internal/proxy"
	"smartrefresh/internal/supervisor"
)

type commandContext struct {
	socketFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	log     *slog.Logger
}

func newCommandContext(socketFlag, configFlag *string) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) socketPath() string {
	if c.socketFlag != nil && strings.TrimSpace(*c.socketFlag) != "" {
		return strings.TrimSpace(*c.socketFlag)
	}
	if cfg := c.configValue(); cfg != nil && strings.TrimSpace(cfg.Paths.SocketPath) != "" {
		return cfg.Paths.SocketPath
	}
	return ipc.DefaultSocketPath
}

// logger builds a file-backed logger so command output on stdout stays
// uncluttered. Falls back to a no-op logger when the log file cannot be
// opened.
func (c *commandContext) logger() *slog.Logger {
	c.logOnce.Do(func() {
		cfg := c.configValue()
		if cfg == nil {
			c.log = logging.NewNop()
			return
		}
		log, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "smartrefresh.log")},
		})
		if err != nil {
			c.log = logging.NewNop()
			return
		}
		c.log = log
	})
	return c.log
}

func (c *commandContext) newProxy() *proxy.Proxy {
	var timeout time.Duration
	if cfg := c.configValue(); cfg != nil {
		timeout = cfg.SocketTimeout()
	}
	client := ipc.NewClient(c.socketPath(), timeout, c.logger())
	return proxy.New(client, c.logger())
}

func (c *commandContext) newSupervisor() (*supervisor.Supervisor, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.Open(cfg)
		if err != nil {
			c.logger().Warn("lifecycle journal unavailable", logging.Error(err))
			store = nil
		}
	}
	return supervisor.New(cfg, store, c.logger()), nil
}

func (c *commandContext) openJournal() (*journal.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	return journal.Open(cfg)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
