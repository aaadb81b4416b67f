// Package testsupport provides shared fixtures: temp-dir-seeded configs, a
// shell-script daemon stub for spawn tests, and a scripted Unix-socket fake
// daemon for IPC tests.
package testsupport
