// Package notifications delivers daemon events to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers publish unconditionally. Events cover inbox imports, failures the
// daemon cannot surface elsewhere, and a manual test message.
package notifications
