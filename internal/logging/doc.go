// Package logging assembles the structured slog loggers used across
// ShotMaster components.
//
// It centralizes attribute constructors and the standardized field keys so
// the project, media, and task layers emit log lines with a consistent
// shape, and provides a no-op logger for tests and wiring code that cannot
// fail. Prefer these constructors over hand-rolled slog setup.
package logging
