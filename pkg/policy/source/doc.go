// Package source loads compliance rules from their storage locations.
//
// The primary implementation is DirectoryLoader, which enumerates .dcl
// files under a directory and parses each one. Loading is resilient: a
// file that fails to parse is reported in the load result and never
// aborts the rest of the load. Watcher provides fsnotify-based change
// notification with debouncing so edits can trigger hot reloads.
package source
