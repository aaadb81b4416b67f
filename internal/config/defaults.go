package config

const (
	defaultSocketPath           = "/tmp/smart-refresh.sock"
	defaultLogDir               = "~/.local/share/smartrefresh/logs"
	defaultBinaryName           = "smart-refresh-daemon"
	defaultShutdownGraceSeconds = 2
	defaultKillWaitSeconds      = 1
	defaultSocketTimeoutSeconds = 2
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultJournalEnabled       = true

	// pluginDirEnv is set by the Decky host when the plugin directory is
	// installed outside the working directory.
	pluginDirEnv = "DECKY_PLUGIN_DIR"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SocketPath: defaultSocketPath,
			LogDir:     defaultLogDir,
		},
		Daemon: Daemon{
			BinaryName:           defaultBinaryName,
			ShutdownGraceSeconds: defaultShutdownGraceSeconds,
			KillWaitSeconds:      defaultKillWaitSeconds,
			SocketTimeoutSeconds: defaultSocketTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Journal: Journal{
			Enabled: defaultJournalEnabled,
		},
	}
}
