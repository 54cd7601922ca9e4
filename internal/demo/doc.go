// Package demo implements a stand-in analysis backend for development.
//
// It speaks the same HTTP protocol as the real scraper backend:
//
//   - GET /: hello payload, used as a health probe
//   - POST /registro: validate the URL and register a process
//   - GET /status/{process_id}: progress snapshot or {"erro": ...}
//   - POST /progresso/{process_id}: progress report from a scraper
//
// With a non-zero Step each registered process walks through Stages on
// its own. A URL containing FailToken fails at the page loading stage, which
// makes the error path easy to exercise from the UI.
package demo
