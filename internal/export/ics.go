package export

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/upnext/upnext/internal/todoist"
)

const icsProductID = "-//upnext//agenda//EN"

// WriteICS writes dated tasks as an iCalendar VEVENT stream. Tasks without
// a due date are skipped: they have no position on a calendar. Date-only
// dues become all-day events; timed dues become one-hour events in UTC.
func WriteICS(w io.Writer, tasks []todoist.Task, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductID)

	now := time.Now().UTC()
	for _, t := range tasks {
		if t.Due == nil {
			continue
		}
		start, err := t.Due.Time(loc)
		if err != nil {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, fmt.Sprintf("task-%s@upnext", t.ID))
		event.Props.SetText(ical.PropSummary, t.Content)
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		if t.Description != "" {
			event.Props.SetText(ical.PropDescription, t.Description)
		}

		if t.Due.HasTime() {
			event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
			event.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(time.Hour).UTC())
		} else {
			event.Props.SetDate(ical.PropDateTimeStart, start)
			event.Props.SetDate(ical.PropDateTimeEnd, start.AddDate(0, 0, 1))
		}
		if t.IsCompleted {
			event.Props.SetText(ical.PropStatus, "COMPLETED")
		}

		cal.Children = append(cal.Children, event.Component)
	}

	return ical.NewEncoder(w).Encode(cal)
}
