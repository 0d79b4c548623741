package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upnext/upnext/internal/todoist"
)

func TestToCalendarEvents(t *testing.T) {
	tasks := []todoist.Task{
		{
			ID:        "1",
			Content:   "Dentist",
			Priority:  4,
			ProjectID: "p1",
			Labels:    []string{"health"},
			Due:       &todoist.Due{Date: "2024-03-01", Datetime: "2024-03-01T09:30:00Z"},
		},
		{
			ID:          "2",
			Content:     "File taxes",
			Priority:    2,
			IsCompleted: true,
			Due:         &todoist.Due{Date: "2024-03-02"},
		},
		{ID: "3", Content: "Someday"},
	}

	events := ToCalendarEvents(tasks, time.UTC)
	require.Len(t, events, 2, "tasks without a due date are not projected")

	timed := events[0]
	assert.Equal(t, "1", timed.ID)
	assert.Equal(t, "Dentist", timed.Title)
	assert.False(t, timed.AllDay)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), timed.Start)
	assert.Equal(t, timed.Start.Add(time.Hour), timed.End)
	assert.Equal(t, []string{"priority-4"}, timed.ClassNames)
	assert.Equal(t, "p1", timed.ProjectID)
	assert.Equal(t, []string{"health"}, timed.Labels)

	allDay := events[1]
	assert.True(t, allDay.AllDay, "no time component means all-day")
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), allDay.Start)
	assert.Equal(t, allDay.Start.AddDate(0, 0, 1), allDay.End)
	assert.Equal(t, []string{"priority-2", "completed"}, allDay.ClassNames,
		"completed marker appended to the priority token")
	assert.True(t, allDay.Completed)
}
