// Package execperm normalizes execute permissions on the daemon binary
// before launch. Plugin stores ship binaries without execute bits more often
// than not, so the supervisor runs this on every spawn.
package execperm

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"smartrefresh/internal/logging"
)

// EnsureExecutable verifies that the file at path exists and carries the
// owner execute bit, adding user/group/other execute bits when missing.
// Failures are logged and reported as false; they never propagate. Applying
// it to an already-executable file leaves the mode untouched.
func EnsureExecutable(path string, logger *slog.Logger) bool {
	if logger == nil {
		logger = logging.NewNop()
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error("daemon binary not found", logging.String("path", path))
		} else {
			logger.Error("inspect daemon binary", logging.String("path", path), logging.Error(err))
		}
		return false
	}

	mode := info.Mode()
	if mode&0o100 != 0 {
		return true
	}

	if err := os.Chmod(path, mode.Perm()|0o111); err != nil {
		logger.Error("set execute permissions", logging.String("path", path), logging.Error(err))
		return false
	}
	logger.Info("set execute permissions", logging.String("path", path))
	return true
}
