// Package settings is a small typed key/value store for device state.
//
// Values are booleans, integers or strings, persisted as JSON under the XDG
// data directory and shared between processes. Changes made by another
// process are picked up through a file watcher and delivered to key watches
// the same way as local changes.
package settings
