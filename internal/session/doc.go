// Package session implements the per-clip mask editing lifecycle: frame
// loading, multi-pass point editing, pass switching, and submission back to
// the processing queue.
package session
