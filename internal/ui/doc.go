// Package ui provides the terminal interface for prodwatch.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea model. It owns the URL input, the result
// panel and an optional backend log pane. All analysis state lives in a
// monitor.Controller: the model forwards messages to it, draws whatever
// Panel it exposes and never decides outcomes itself.
//
// # Package Structure
//
//   - model.go: Model, Options, Update loop and the Run entry point
//   - view.go: header, input box, result panel, progress bar and log pane
//   - help.go: keyboard shortcut overlay
//   - keys.go: key bindings shared by the footer and the overlay
//   - theme.go: dark and light palettes and the styles built from them
//   - style_helpers.go: background-safe rendering helpers
//   - layout.go: width limits and log refresh constants
//
// # Event Flow
//
//  1. Init starts the cursor blink, the spinner and the backend readiness check
//  2. Enter hands the current input value to Controller.Submit
//  3. Controller commands run off the update loop and report back as messages
//  4. Every message the model does not own goes to Controller.Update
//  5. View renders Controller.Panel on each frame
//
// # Key Bindings
//
//   - enter: analyze the URL in the input (also "analyze another")
//   - ctrl+t: switch between the dark and light theme; the choice is saved
//   - ctrl+l: show or hide the tail of the backend log
//   - f1: keyboard shortcut overlay
//   - esc, ctrl+c: quit
//
// # Progress Colors
//
// The bar is red below 30%, amber below 70% and green from there on. The
// stage glyph moves from ⏳ to ⚡ above 50% and to ✅ above 90%.
package ui
