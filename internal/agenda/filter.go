package agenda

import (
	"strings"

	"github.com/upnext/upnext/internal/todoist"
)

// Filter narrows a task collection. The zero value keeps everything.
// Predicates are conjunctive and order-independent: applying them together
// equals intersecting the individually filtered sets.
type Filter struct {
	// Search keeps tasks whose content contains the term,
	// case-insensitively. Empty keeps all.
	Search string

	// Priority keeps tasks with exactly this priority (1-4). Zero keeps all.
	Priority int

	// Labels keeps tasks carrying at least one of the listed labels.
	// Empty keeps all.
	Labels []string
}

// Match reports whether a single task passes the filter.
func (f Filter) Match(t todoist.Task) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Content), strings.ToLower(f.Search)) {
		return false
	}
	if f.Priority != 0 && t.Priority != f.Priority {
		return false
	}
	if len(f.Labels) > 0 && !intersects(t.Labels, f.Labels) {
		return false
	}
	return true
}

// FilterTasks returns the tasks passing the filter, preserving relative
// order. The input slice is never modified.
func FilterTasks(tasks []todoist.Task, f Filter) []todoist.Task {
	var out []todoist.Task
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
