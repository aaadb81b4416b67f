package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and socket address configuration.
type Paths struct {
	PluginDir  string `toml:"plugin_dir"`
	SocketPath string `toml:"socket_path"`
	LogDir     string `toml:"log_dir"`
}

// Daemon contains daemon binary discovery and timing configuration.
type Daemon struct {
	BinaryName           string `toml:"binary_name"`
	ShutdownGraceSeconds int    `toml:"shutdown_grace_seconds"`
	KillWaitSeconds      int    `toml:"kill_wait_seconds"`
	SocketTimeoutSeconds int    `toml:"socket_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Journal contains configuration for the lifecycle event journal.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config encapsulates all configuration values for SmartRefresh.
//
// Configuration sections by subsystem:
//   - Paths: plugin directory, daemon socket address, and log directory
//   - Daemon: binary name plus shutdown and IPC timing knobs
//   - Logging: log format and level
//   - Journal: lifecycle event journal toggle and database path
type Config struct {
	Paths   Paths   `toml:"paths"`
	Daemon  Daemon  `toml:"daemon"`
	Logging Logging `toml:"logging"`
	Journal Journal `toml:"journal"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/smartrefresh/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("smartrefresh.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for supervisor operation.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	if c.Journal.Enabled {
		dir := filepath.Dir(c.JournalPath())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DaemonBinaryPath returns the expected location of the daemon executable
// beneath the plugin directory.
func (c *Config) DaemonBinaryPath() string {
	return filepath.Join(c.Paths.PluginDir, "bin", c.Daemon.BinaryName)
}

// LockPath returns the supervisor lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "smartrefresh.lock")
}

// PIDPath returns the daemon pid file location.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.LogDir, "smartrefresh.pid")
}

// JournalPath returns the journal database location, defaulting to the log
// directory when unset.
func (c *Config) JournalPath() string {
	if strings.TrimSpace(c.Journal.Path) != "" {
		return c.Journal.Path
	}
	return filepath.Join(c.Paths.LogDir, "journal.db")
}

// ShutdownGrace returns the window a daemon gets to exit after SIGTERM.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Daemon.ShutdownGraceSeconds) * time.Second
}

// KillWait returns the confirmation window after SIGKILL.
func (c *Config) KillWait() time.Duration {
	return time.Duration(c.Daemon.KillWaitSeconds) * time.Second
}

// SocketTimeout bounds IPC connect and read operations.
func (c *Config) SocketTimeout() time.Duration {
	return time.Duration(c.Daemon.SocketTimeoutSeconds) * time.Second
}

// CreateSample writes the embedded sample configuration to the target path.
func CreateSample(path string) error {
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves tilde shortcuts and returns an absolute, cleaned path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
