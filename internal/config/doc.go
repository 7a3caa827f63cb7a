// Package config loads, normalizes, and validates DeepFakeStudio console
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DFSTUDIO_API_TOKEN. The Config type centralizes every knob the console
// needs, including the static per-project native resolution table used by
// the annotation editor.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
