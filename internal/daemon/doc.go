// Package daemon coordinates the long-running steamdrop process.
//
// It wires the shelf, the background refresher, and the optional inbox
// watcher into a single lifecycle with flock-based locking to prevent
// multiple instances. Library changes are logged as they happen so the log
// doubles as an activity feed.
//
// Keep orchestration logic here: import, resolution and indexing live in
// their own packages while the daemon focuses on startup, shutdown, and high
// level coordination.
package daemon
