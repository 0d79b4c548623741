package agenda

import (
	"fmt"
	"time"

	"github.com/upnext/upnext/internal/todoist"
)

// defaultEventDuration is the rendered length of a timed event; Todoist due
// datetimes carry no duration.
const defaultEventDuration = time.Hour

// Event is the calendar projection of a task with a due date.
type Event struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	AllDay     bool      `json:"allDay"`
	Priority   int       `json:"priority"`
	ProjectID  string    `json:"project_id,omitempty"`
	Completed  bool      `json:"completed"`
	Labels     []string  `json:"labels,omitempty"`
	ClassNames []string  `json:"classNames"`
}

// ToCalendarEvents projects tasks with a due value into calendar events,
// one per task. AllDay is true iff the due descriptor has no time-of-day
// component. The class tokens ("priority-{1..4}", "completed") are the
// contract the calendar styling consumes and must keep their shape.
func ToCalendarEvents(tasks []todoist.Task, loc *time.Location) []Event {
	var events []Event
	for _, t := range tasks {
		if t.Due == nil {
			continue
		}
		start, err := t.Due.Time(loc)
		if err != nil {
			continue
		}

		allDay := !t.Due.HasTime()
		end := start.Add(defaultEventDuration)
		if allDay {
			end = start.AddDate(0, 0, 1)
		}

		events = append(events, Event{
			ID:         t.ID,
			Title:      t.Content,
			Start:      start,
			End:        end,
			AllDay:     allDay,
			Priority:   t.Priority,
			ProjectID:  t.ProjectID,
			Completed:  t.IsCompleted,
			Labels:     t.Labels,
			ClassNames: classNames(t),
		})
	}
	return events
}

func classNames(t todoist.Task) []string {
	names := []string{fmt.Sprintf("priority-%d", t.Priority)}
	if t.IsCompleted {
		names = append(names, "completed")
	}
	return names
}
