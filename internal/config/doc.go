// Package config loads, normalizes, and validates SmartRefresh configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DECKY_PLUGIN_DIR. The Config type centralizes every knob the supervisor,
// IPC client, and CLI need: where the daemon binary lives, which socket it
// serves, and how long lifecycle operations may block.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
