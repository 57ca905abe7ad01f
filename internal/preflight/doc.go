// Package preflight provides readiness checks for the filesystem paths and
// the store catalog that steamdrop depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs every failure.
//   - The CLI "steamdrop doctor" command renders the results as a table.
//
// Optional checks describe conveniences (the current account, the inbox);
// their failures are reported but never block the daemon.
package preflight
