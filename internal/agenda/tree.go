package agenda

import (
	"sort"

	"github.com/upnext/upnext/internal/todoist"
)

// TaskNode is a top-level task with its direct subtasks attached.
type TaskNode struct {
	Task     todoist.Task
	Subtasks []todoist.Task
}

// BuildTaskForest partitions tasks into a one-level forest: top-level tasks
// (no parent) with their direct subtasks. A subtask's own children are not
// collected; the dashboard renders a single nesting level.
func BuildTaskForest(tasks []todoist.Task) []TaskNode {
	children := make(map[string][]todoist.Task)
	for _, t := range tasks {
		if t.ParentID != "" {
			children[t.ParentID] = append(children[t.ParentID], t)
		}
	}

	var forest []TaskNode
	for _, t := range tasks {
		if t.ParentID != "" {
			continue
		}
		forest = append(forest, TaskNode{
			Task:     t,
			Subtasks: children[t.ID],
		})
	}
	return forest
}

// SectionGroup is a section with the tasks that belong to it.
type SectionGroup struct {
	Section todoist.Section
	Tasks   []todoist.Task
}

// BuildSectionTree groups tasks under their sections, ordered by the
// sections' own order. Tasks whose section_id matches no given section are
// omitted; callers render an ungrouped fallback from the flat list when a
// project has no sections.
func BuildSectionTree(tasks []todoist.Task, sections []todoist.Section) []SectionGroup {
	ordered := make([]todoist.Section, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	bySection := make(map[string][]todoist.Task)
	for _, t := range tasks {
		if t.SectionID != "" {
			bySection[t.SectionID] = append(bySection[t.SectionID], t)
		}
	}

	var groups []SectionGroup
	for _, s := range ordered {
		groups = append(groups, SectionGroup{
			Section: s,
			Tasks:   bySection[s.ID],
		})
	}
	return groups
}
