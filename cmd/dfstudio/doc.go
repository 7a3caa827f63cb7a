// Package main hosts the dfstudio CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the processing backend: project and clip inspection, queue
// control, mask editing, character uploads, and configuration scaffolding.
// It centralizes configuration resolution, client construction, and logging
// setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
