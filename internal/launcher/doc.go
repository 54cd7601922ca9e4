// Package launcher hosts the analysis backend as a child process.
//
// Start spawns the configured command and copies its stdout and stderr line
// by line into the structured log and into a capture file that the UI tails.
// WaitReady polls the backend's TCP port a bounded number of times before
// the UI opens; a backend that never answers is reported, not fatal. Stop
// interrupts the child, kills it if it lingers, and may be called any number
// of times.
package launcher
