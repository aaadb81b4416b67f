// Package supervisor spawns and terminates the smart-refresh daemon
// subprocess.
//
// At most one daemon is tracked at a time. Spawning fixes the binary's
// execute bit first, detaches the child into its own process group, and is
// guarded by a file lock so concurrent supervisors cannot double-launch.
// Stopping escalates from SIGTERM through SIGKILL and reports which rung of
// the ladder ended the process.
package supervisor
