// Package config handles loading and parsing the prodwatch configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/prodwatch/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. PRODWATCH_API_BIND and PRODWATCH_BACKEND_CMD override the result
//
// The environment is read as-is; loading a .env file is the caller's job.
//
// # Default Values
//
//   - API endpoint: 127.0.0.1:5000
//   - Backend readiness: 10 attempts, 1s apart
//   - Poll interval: 1.5s, failure threshold 3, stale after 30s
//   - Session time limit: 10m, request timeout 5s
//   - Artifacts: amazon_product.csv, amazon_reviews.csv
//   - Logs: ~/.local/share/prodwatch/{prodwatch,backend}.log
//
// # Example
//
//	api_bind = "127.0.0.1:5000"
//
//	[backend]
//	command = "python3"
//	args = ["app.py"]
//	dir = "~/src/scraper"
//	ready_attempts = 10
//	ready_delay = "1s"
//
//	[monitor]
//	poll_interval = "1.5s"
//	max_failures = 3
//	stale_after = "30s"
//	session_timeout = "10m"
//
// Durations use time.ParseDuration syntax and must be positive. All paths
// support ~ expansion and are made absolute.
//
// # Error Handling
//
// A missing file is not an error. Unreadable files, malformed TOML and bad
// durations are returned wrapped ("parse config: ...").
package config
