// Package logging configures slog handlers shared by the CLI, supervisor,
// and plugin hooks.
//
// It offers a console format for interactive use and a JSON format for
// machine consumption, plus small attr aliases so call sites stay terse.
// Component loggers prefix their records with the owning subsystem name.
package logging
