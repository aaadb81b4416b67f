package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"smartrefresh/internal/config"
	"smartrefresh/internal/execperm"
	"smartrefresh/internal/journal"
	"smartrefresh/internal/logging"
)

// ErrAlreadyRunning is returned when Spawn is refused because a daemon is
// already tracked or another supervisor holds the lock.
var ErrAlreadyRunning = errors.New("daemon already running")

// StopOutcome identifies the terminal state of a Stop call. Every variant
// leaves the supervisor with no tracked process.
type StopOutcome int

const (
	// StopNone means nothing was tracked; no signal was sent.
	StopNone StopOutcome = iota
	// StopAlreadyGone means the process had exited before SIGTERM reached it.
	StopAlreadyGone
	// StopClean means the process exited within the shutdown grace period.
	StopClean
	// StopForced means the process ignored SIGTERM and was killed.
	StopForced
	// StopUnconfirmed means exit was not observed even after SIGKILL. The
	// daemon may be stuck in uninterruptible sleep; nothing further can be
	// done from here.
	StopUnconfirmed
)

func (o StopOutcome) String() string {
	switch o {
	case StopAlreadyGone:
		return "already_gone"
	case StopClean:
		return "clean"
	case StopForced:
		return "forced"
	case StopUnconfirmed:
		return "unconfirmed"
	default:
		return "none"
	}
}

// handle tracks one spawned daemon process. The pid and process object are
// set and cleared together, never one without the other.
type handle struct {
	pid  int
	proc *os.Process
	wait chan error
}

// Supervisor owns the lifecycle of at most one daemon subprocess: spawn,
// liveness tracking, and graceful-then-forced termination. A file lock
// shared with other supervisor processes prevents double spawns.
type Supervisor struct {
	cfg     *config.Config
	logger  *slog.Logger
	journal *journal.Store
	lock    *flock.Flock

	mu     sync.Mutex
	handle *handle
}

// New constructs a supervisor. The journal may be nil to disable event
// recording.
func New(cfg *config.Config, jrnl *journal.Store, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "supervisor"),
		journal: jrnl,
		lock:    flock.New(cfg.LockPath()),
	}
}

// Spawn launches the daemon binary as a detached process group leader with
// its output discarded and its working directory set to the plugin
// directory. A spawn is refused while a live daemon is tracked or while
// another supervisor holds the lock; the previous handle is never silently
// replaced.
func (s *Supervisor) Spawn() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil && pidAlive(s.handle.pid) {
		s.logger.Warn("spawn refused, daemon already tracked", logging.Int("pid", s.handle.pid))
		s.record(journal.KindSpawnRejected, s.handle.pid, "daemon already running")
		return ErrAlreadyRunning
	}

	binary := s.cfg.DaemonBinaryPath()
	if !execperm.EnsureExecutable(binary, s.logger) {
		s.record(journal.KindSpawnFailed, 0, fmt.Sprintf("binary not launchable: %s", binary))
		return fmt.Errorf("daemon binary %q is not launchable", binary)
	}

	locked, err := s.lock.TryLock()
	if err != nil {
		s.record(journal.KindSpawnFailed, 0, err.Error())
		return fmt.Errorf("acquire supervisor lock: %w", err)
	}
	if !locked {
		s.logger.Warn("spawn refused, lock held by another supervisor", logging.String("lock", s.cfg.LockPath()))
		s.record(journal.KindSpawnRejected, 0, "supervisor lock held elsewhere")
		return ErrAlreadyRunning
	}

	cmd := exec.Command(binary)
	cmd.Dir = s.cfg.Paths.PluginDir
	// New process group so signals aimed at the supervisor's group never
	// reach the daemon. Stdout/stderr stay nil and are discarded; the
	// daemon does its own file logging.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		_ = s.lock.Unlock()
		s.handle = nil
		s.logger.Error("failed to spawn daemon", logging.String("binary", binary), logging.Error(err))
		s.record(journal.KindSpawnFailed, 0, err.Error())
		return fmt.Errorf("launch daemon: %w", err)
	}

	h := &handle{pid: cmd.Process.Pid, proc: cmd.Process, wait: make(chan error, 1)}
	go func() {
		h.wait <- cmd.Wait()
	}()
	s.handle = h
	s.writePIDFile(h.pid)

	s.logger.Info("daemon spawned", logging.Int("pid", h.pid), logging.String("binary", binary))
	s.record(journal.KindSpawned, h.pid, binary)
	return nil
}

// Stop terminates the daemon: SIGTERM, wait up to the shutdown grace, then
// SIGKILL with a short confirmation wait. Stopping with nothing tracked is
// an idempotent no-op. When no in-memory handle exists (a different process
// spawned the daemon), the pid file is used instead. Every return path
// clears the tracked handle.
func (s *Supervisor) Stop() (StopOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		return s.stopTracked()
	}
	if pid, ok := s.readPIDFile(); ok {
		return s.stopDetached(pid)
	}
	s.logger.Info("no daemon process to stop")
	return StopNone, nil
}

// Running reports whether a tracked daemon process is still alive.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil && pidAlive(s.handle.pid)
}

// stopTracked drives the escalation sequence for a daemon this supervisor
// spawned, using the child wait channel for exit confirmation.
func (s *Supervisor) stopTracked() (StopOutcome, error) {
	h := s.handle
	defer s.clear()

	if err := h.proc.Signal(unix.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, unix.ESRCH) {
			s.logger.Info("daemon already terminated", logging.Int("pid", h.pid))
			s.record(journal.KindStopAlreadyGone, h.pid, "")
			return StopAlreadyGone, nil
		}
		s.logger.Error("failed to signal daemon", logging.Int("pid", h.pid), logging.Error(err))
		s.record(journal.KindStopUnconfirmed, h.pid, err.Error())
		return StopUnconfirmed, fmt.Errorf("signal daemon pid %d: %w", h.pid, err)
	}
	s.logger.Info("sent SIGTERM to daemon", logging.Int("pid", h.pid))

	select {
	case <-h.wait:
		s.logger.Info("daemon shut down gracefully", logging.Int("pid", h.pid))
		s.record(journal.KindStopClean, h.pid, "")
		return StopClean, nil
	case <-time.After(s.cfg.ShutdownGrace()):
	}

	s.logger.Warn("daemon did not shut down gracefully, sending SIGKILL", logging.Int("pid", h.pid))
	if err := h.proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		s.logger.Error("failed to kill daemon", logging.Int("pid", h.pid), logging.Error(err))
		s.record(journal.KindStopUnconfirmed, h.pid, err.Error())
		return StopUnconfirmed, fmt.Errorf("kill daemon pid %d: %w", h.pid, err)
	}

	select {
	case <-h.wait:
		s.record(journal.KindStopForced, h.pid, "")
		return StopForced, nil
	case <-time.After(s.cfg.KillWait()):
		s.logger.Warn("daemon exit unconfirmed after SIGKILL", logging.Int("pid", h.pid))
		s.record(journal.KindStopUnconfirmed, h.pid, "no exit confirmation")
		return StopUnconfirmed, nil
	}
}

// stopDetached drives the same escalation against a pid this process did
// not spawn, confirming exit by liveness probes instead of a wait channel.
func (s *Supervisor) stopDetached(pid int) (StopOutcome, error) {
	defer s.clear()

	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			s.logger.Info("daemon already terminated", logging.Int("pid", pid))
			s.record(journal.KindStopAlreadyGone, pid, "")
			return StopAlreadyGone, nil
		}
		s.logger.Error("failed to signal daemon", logging.Int("pid", pid), logging.Error(err))
		s.record(journal.KindStopUnconfirmed, pid, err.Error())
		return StopUnconfirmed, fmt.Errorf("signal daemon pid %d: %w", pid, err)
	}
	s.logger.Info("sent SIGTERM to daemon", logging.Int("pid", pid))

	if waitForExit(pid, s.cfg.ShutdownGrace()) {
		s.logger.Info("daemon shut down gracefully", logging.Int("pid", pid))
		s.record(journal.KindStopClean, pid, "")
		return StopClean, nil
	}

	s.logger.Warn("daemon did not shut down gracefully, sending SIGKILL", logging.Int("pid", pid))
	if err := unix.Kill(pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		s.logger.Error("failed to kill daemon", logging.Int("pid", pid), logging.Error(err))
		s.record(journal.KindStopUnconfirmed, pid, err.Error())
		return StopUnconfirmed, fmt.Errorf("kill daemon pid %d: %w", pid, err)
	}

	if waitForExit(pid, s.cfg.KillWait()) {
		s.record(journal.KindStopForced, pid, "")
		return StopForced, nil
	}
	s.logger.Warn("daemon exit unconfirmed after SIGKILL", logging.Int("pid", pid))
	s.record(journal.KindStopUnconfirmed, pid, "no exit confirmation")
	return StopUnconfirmed, nil
}

// clear drops the tracked handle, removes the pid file, and releases the
// lock. Called on every Stop path that had a process to act on.
func (s *Supervisor) clear() {
	s.handle = nil
	if err := os.Remove(s.cfg.PIDPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove pid file", logging.String("path", s.cfg.PIDPath()), logging.Error(err))
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Debug("release supervisor lock", logging.Error(err))
	}
}

func (s *Supervisor) writePIDFile(pid int) {
	path := s.cfg.PIDPath()
	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		s.logger.Warn("failed to write pid file", logging.String("path", path), logging.Error(err))
	}
}

func (s *Supervisor) readPIDFile() (int, bool) {
	data, err := os.ReadFile(s.cfg.PIDPath())
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 || pid == os.Getpid() {
		return 0, false
	}
	return pid, true
}

func (s *Supervisor) record(kind string, pid int, detail string) {
	if s.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := s.journal.Record(ctx, kind, pid, detail); err != nil {
		s.logger.Warn("failed to record journal event", logging.String("kind", kind), logging.Error(err))
	}
}

func pidAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// waitForExit polls process liveness until the pid disappears or the
// timeout elapses.
func waitForExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !pidAlive(pid) {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return !pidAlive(pid)
}
