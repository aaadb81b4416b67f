package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeDaemon()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error

	c.Paths.PluginDir = strings.TrimSpace(c.Paths.PluginDir)
	if c.Paths.PluginDir == "" {
		if value, ok := os.LookupEnv(pluginDirEnv); ok && strings.TrimSpace(value) != "" {
			c.Paths.PluginDir = value
		} else {
			c.Paths.PluginDir = "."
		}
	}
	if c.Paths.PluginDir, err = ExpandPath(c.Paths.PluginDir); err != nil {
		return fmt.Errorf("paths.plugin_dir: %w", err)
	}

	c.Paths.SocketPath = strings.TrimSpace(c.Paths.SocketPath)
	if c.Paths.SocketPath == "" {
		c.Paths.SocketPath = defaultSocketPath
	}

	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeJournal() error {
	c.Journal.Path = strings.TrimSpace(c.Journal.Path)
	if c.Journal.Path == "" {
		return nil
	}
	expanded, err := ExpandPath(c.Journal.Path)
	if err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	c.Journal.Path = expanded
	return nil
}

func (c *Config) normalizeDaemon() {
	c.Daemon.BinaryName = strings.TrimSpace(c.Daemon.BinaryName)
	if c.Daemon.BinaryName == "" {
		c.Daemon.BinaryName = defaultBinaryName
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
