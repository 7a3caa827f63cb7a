// Package statecache stores console-local state in SQLite: completion
// markers used to deduplicate notifications, and per-project clip snapshots.
package statecache
