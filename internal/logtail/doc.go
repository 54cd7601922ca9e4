// Package logtail reads the tail of the captured backend log for the TUI.
//
// Read keeps a ring buffer of the last maxLines lines while scanning, so
// memory stays bounded no matter how large the file grows. Lines up to 1MiB
// are supported. Classify gives the UI a severity to pick a color from.
package logtail
