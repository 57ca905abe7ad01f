// Package library maintains the in-memory index of installed unlock scripts.
//
// The index is derived entirely from the script destination directory: each
// script file is mapped to an app id and grouped with the other scripts for
// that id. Rebuild replaces the index wholesale but carries resolved names
// forward, so file-level changes never lose names the refresher already
// found. The refresher only ever changes names through SetName.
package library
