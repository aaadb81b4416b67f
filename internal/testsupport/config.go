package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"smartrefresh/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The journal is disabled by default; timing knobs keep their repository
// defaults so tests exercising escalation override them explicitly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.PluginDir = base
	cfg.Paths.SocketPath = filepath.Join(base, "smart-refresh.sock")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Journal.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithJournal enables the lifecycle journal on the test config.
func WithJournal() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Journal.Enabled = true
	}
}

// WithGrace overrides the shutdown grace and kill wait windows (in seconds).
func WithGrace(graceSeconds, killWaitSeconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Daemon.ShutdownGraceSeconds = graceSeconds
		cfg.Daemon.KillWaitSeconds = killWaitSeconds
	}
}

// WriteDaemonStub installs a shell script as the daemon binary under the
// config's plugin directory and returns its path. The script is written
// without execute permissions so spawn paths exercise permission
// normalization.
func WriteDaemonStub(t testing.TB, cfg *config.Config, script string) string {
	t.Helper()

	target := cfg.DaemonBinaryPath()
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	if err := os.WriteFile(target, []byte(script), 0o644); err != nil {
		t.Fatalf("write daemon stub: %v", err)
	}
	return target
}
