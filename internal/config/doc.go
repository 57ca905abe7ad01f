// Package config loads, normalizes, and validates steamdrop configuration.
//
// Configuration lives in a TOML file (default ~/.config/steamdrop/config.toml,
// falling back to ./steamdrop.toml). Missing files are not an error: defaults
// apply and the Steam installation is auto-detected. Every path field is
// expanded (~ and relative paths) during Load so downstream packages can use
// the values directly.
//
// The script and manifest destinations are derived from the Steam path unless
// overridden explicitly. Callers that keep a long-lived Config must read the
// destinations through ScriptDir/ManifestDir on each use so a reloaded
// configuration takes effect immediately.
package config
