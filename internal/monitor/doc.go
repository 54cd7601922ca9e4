// Package monitor drives one product analysis from submission to result.
//
// A Controller validates the URL, submits it, then polls the backend on a
// fixed interval until the process concludes, reports an error, stops
// answering, or exceeds the session time limit. Every state change is
// reflected in a Panel that the UI renders.
//
// The controller is not safe for concurrent use. It is driven from the
// Bubble Tea update loop: Submit and Update return tea.Cmds that perform the
// network calls and timers, and their results come back as messages. Each
// session carries a generation number, so ticks and responses belonging to
// a discarded session are dropped when they arrive.
//
// Polling never overlaps: the next poll timer is armed only after the
// previous status fetch has returned. Polling stops after more than
// MaxFailures consecutive failures, or when a failure happens and nothing
// has been heard for longer than StaleAfter. An independent safety timer
// ends the session after SessionTimeout unless it already finished.
package monitor
