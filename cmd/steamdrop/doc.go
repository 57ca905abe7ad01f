// Command steamdrop manages the unlock scripts and depot manifests installed
// into a local Steam client.
//
// One-shot commands (import, list, show, remove, resolve, refresh, cache,
// account, doctor, notify-test) operate directly on the configured
// directories. The run command starts the long-lived daemon that resolves
// names in the background and imports whatever lands in the inbox directory.
package main
