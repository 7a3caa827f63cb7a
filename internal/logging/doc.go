// Package logging builds the console's slog loggers.
//
// It offers a human-readable console handler and a JSON handler selected by
// configuration, plus small attribute helpers and standardized field names so
// project, clip, and pass identifiers appear consistently across components.
package logging
