package agenda

import (
	"time"

	"github.com/upnext/upnext/internal/todoist"
)

// Buckets is the date-relative partition of a task collection. A task with
// no due date belongs to none of them. For a single evaluation instant the
// buckets are mutually exclusive.
type Buckets struct {
	Overdue  []todoist.Task
	Today    []todoist.Task
	Upcoming []todoist.Task
}

// Classify partitions tasks by due date relative to now. The rules mirror
// the dashboard's list behavior:
//
//   - today: the due calendar date equals now's date, regardless of
//     completion and regardless of time of day
//   - overdue: due instant strictly before now, not completed, and not due
//     today
//   - upcoming: due instant strictly after now and not due today
//
// A completed task due today still lands in today; completion only excludes
// from overdue. A task due at exactly now is not upcoming. Tasks whose due
// descriptor fails to parse are skipped.
func Classify(tasks []todoist.Task, now time.Time) Buckets {
	var b Buckets
	loc := now.Location()

	for _, t := range tasks {
		if t.Due == nil {
			continue
		}
		due, err := t.Due.Time(loc)
		if err != nil {
			continue
		}

		switch {
		case sameDay(due.In(loc), now):
			b.Today = append(b.Today, t)
		case due.Before(now):
			if !t.IsCompleted {
				b.Overdue = append(b.Overdue, t)
			}
		case due.After(now):
			b.Upcoming = append(b.Upcoming, t)
		}
	}
	return b
}

// Stats holds the dashboard's headline counts.
type Stats struct {
	Total     int `json:"total"`
	Overdue   int `json:"overdue"`
	Completed int `json:"completed"`
	Today     int `json:"today"`
}

// CountStats computes the headline counts for a task collection.
func CountStats(tasks []todoist.Task, now time.Time) Stats {
	b := Classify(tasks, now)
	s := Stats{
		Total:   len(tasks),
		Overdue: len(b.Overdue),
		Today:   len(b.Today),
	}
	for _, t := range tasks {
		if t.IsCompleted {
			s.Completed++
		}
	}
	return s
}

// GroupByDate buckets tasks by their due calendar date, keyed YYYY-MM-DD.
// Tasks without a due date are omitted. Used by the month view.
func GroupByDate(tasks []todoist.Task) map[string][]todoist.Task {
	byDate := make(map[string][]todoist.Task)
	for _, t := range tasks {
		if t.Due == nil || t.Due.Date == "" {
			continue
		}
		byDate[t.Due.Date] = append(byDate[t.Due.Date], t)
	}
	return byDate
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
