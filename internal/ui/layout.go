package ui

import "time"

// Layout limits.
const (
	// MaxContentWidth caps the input and result panel on wide terminals.
	MaxContentWidth = 90

	// MinContentWidth keeps the panel readable on narrow terminals.
	MinContentWidth = 40

	// LogTailLines is how many backend log lines the log view keeps.
	LogTailLines = 200
)

// LogRefreshInterval is how often the backend log view re-reads the file.
const LogRefreshInterval = time.Second
