// Package logging assembles structured slog loggers and formatting helpers used
// across steamdrop.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and provides typed attribute constructors plus the standard field
// keys (component, event_type, error_hint, impact) so every component emits
// data with the same shape. A no-op logger is available for tests and wiring
// code that cannot fail.
package logging
