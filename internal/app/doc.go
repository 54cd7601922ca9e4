// Package app provides the orchestration layer for the prodwatch application.
//
// # Overview
//
// This package wires together configuration, logging, the backend process,
// the analysis controller and the UI. It is the composition root where all
// dependencies are initialized and connected.
//
// # Architecture
//
//  1. Load prodwatch configuration from ~/.config/prodwatch/config.toml
//  2. Open the file logger (the TUI owns the terminal)
//  3. Initialize the HTTP client for the analysis backend
//  4. Launch the backend process when a command is configured
//  5. Build the monitor.Controller with the configured poll limits
//  6. Start the TUI and block until the user exits or the context cancels
//  7. Stop the backend on the way out
//
// # Components
//
//   - app.go: Run and the backend watcher handed to the UI
//   - poller.go: background health poller with exponential backoff
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read prodwatch config
//	       ├─────> logging.OpenFile()   File logger
//	       ├─────> backend.NewClient()  HTTP client
//	       ├─────> launcher.Start()     Host the backend (optional)
//	       ├─────> monitor.New()        Submission and polling controller
//	       └─────> ui.Run()             Start TUI (blocks)
//
//	Background (inside ui.Run):
//	┌─────────────────────────────────────────┐
//	│ watchBackend()                          │
//	│  ├─> launcher.Done()  exit reporting    │
//	│  └─> StartHealthPoller()                │
//	│      └─> Ping() ─> BackendStatusMsg     │
//	└─────────────────────────────────────────┘
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file present but invalid
//   - Log file cannot be opened
//   - Backend address cannot be parsed
//   - Backend command cannot be started
//
// Recoverable errors (shown in the header, never fatal):
//   - Backend not ready within the readiness window
//   - Health checks failing after startup
//   - Launched backend exiting on its own
//
// The health poller only reports changes in reachability and backs off
// exponentially, capped at 30 seconds, while the backend is down.
package app
