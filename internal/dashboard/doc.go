// Package dashboard assembles the task views served to clients. It fronts
// the Todoist client with a freshness-window cache, applies filters, and
// produces the date-bucketed agenda, calendar events, subtask forests, and
// section groupings.
package dashboard
