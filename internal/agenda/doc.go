// Package agenda derives the dashboard's views from a flat task collection.
//
// All functions are pure: they take tasks (and, for date classification, an
// explicit evaluation instant) and return derived structures without touching
// the network or the clock. This keeps every view computable from cached
// data and testable with a fixed "now".
//
// The derived views:
//   - FilterTasks: conjunctive search/priority/label filtering
//   - Classify: overdue / today / upcoming date buckets
//   - BuildTaskForest: one-level parent/subtask grouping
//   - BuildSectionTree: per-section grouping for the project dashboard
//   - ToCalendarEvents: calendar event projection with styling class tokens
//   - GroupByDate, CountStats: month-view grouping and headline counts
package agenda
