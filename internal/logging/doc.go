// Package logging provides structured logging helpers built on log/slog.
//
// It defines the canonical attribute keys used across the application
// (operation, service, resource, request_id, status, error) so log lines
// stay queryable, plus token sanitization for the two bearer tokens the
// process handles. The two remote sources are logged under service=todoist
// and service=notion.
package logging
