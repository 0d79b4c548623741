// Package cmd implements the command-line interface for upnext.
//
// This package provides the following commands:
//   - agenda: Show overdue, today, and upcoming tasks
//   - serve: Start the dashboard API server and Notion read proxy
//   - export: Export tasks as JSON, CSV, iCalendar, or PDF
//   - tasks: Close or reopen individual tasks
//   - login: Store API tokens for Todoist and Notion
//   - version: Display version information
//
// The agenda command is the default command when no subcommand is specified.
package cmd
