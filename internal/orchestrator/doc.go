// Package orchestrator implements project-level job control against the
// processing backend: queueing clips, stopping the worker, resetting
// projects, and stitching the final video.
package orchestrator
