package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDaemon() error {
	if c.Daemon.BinaryName == "" {
		return errors.New("daemon.binary_name must be set")
	}
	if strings.ContainsAny(c.Daemon.BinaryName, "/\\") {
		return fmt.Errorf("daemon.binary_name must be a bare file name, got %q", c.Daemon.BinaryName)
	}
	if err := ensurePositiveMap(map[string]int{
		"daemon.shutdown_grace_seconds": c.Daemon.ShutdownGraceSeconds,
		"daemon.kill_wait_seconds":      c.Daemon.KillWaitSeconds,
		"daemon.socket_timeout_seconds": c.Daemon.SocketTimeoutSeconds,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		return errors.New("paths.socket_path must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
