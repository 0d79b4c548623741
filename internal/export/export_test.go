package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upnext/upnext/internal/todoist"
)

var exportProjects = map[string]string{"p1": "Work", "p2": "Home"}

func exportTasks() []todoist.Task {
	return []todoist.Task{
		{
			ID:        "1",
			Content:   "file taxes",
			ProjectID: "p1",
			Priority:  4,
			Due:       &todoist.Due{String: "Jun 10", Date: "2024-06-10"},
		},
		{
			ID:        "2",
			Content:   "water plants",
			ProjectID: "p2",
			Priority:  1,
		},
	}
}

func TestWriteJSONRecordShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, exportTasks(), exportProjects))

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)

	// each record carries exactly the four export fields
	for _, r := range records {
		assert.Len(t, r, 4)
		for _, field := range []string{"content", "due", "priority", "project"} {
			assert.Contains(t, r, field)
		}
	}
	assert.Equal(t, "file taxes", records[0]["content"])
	assert.Equal(t, "Jun 10", records[0]["due"])
	assert.Equal(t, "Work", records[0]["project"])
	assert.Equal(t, "", records[1]["due"], "undated task exports an empty due")
}

func TestRecordsFallBackToRawProjectID(t *testing.T) {
	records := Records([]todoist.Task{{Content: "x", ProjectID: "p-unknown"}}, nil)
	require.Len(t, records, 1)
	assert.Equal(t, "p-unknown", records[0].Project)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportTasks(), exportProjects))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"content", "due", "priority", "project"}, rows[0])
	assert.Equal(t, []string{"file taxes", "Jun 10", "4", "Work"}, rows[1])
	assert.Equal(t, []string{"water plants", "", "1", "Home"}, rows[2])
}

func TestWriteICS(t *testing.T) {
	tasks := []todoist.Task{
		{ID: "1", Content: "dentist", Due: &todoist.Due{Date: "2024-06-10", Datetime: "2024-06-10T09:30:00Z"}},
		{ID: "2", Content: "groceries", Due: &todoist.Due{Date: "2024-06-11"}},
		{ID: "3", Content: "someday"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, tasks, time.UTC))
	out := buf.String()

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:dentist")
	assert.Contains(t, out, "SUMMARY:groceries")
	assert.NotContains(t, out, "someday", "undated tasks are not calendar events")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	// timed due keeps its time, date-only due is an all-day DATE value
	assert.Contains(t, out, "DTSTART:20240610T093000Z")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240611")
}

func TestWriteICSSkipsUnparseableDue(t *testing.T) {
	tasks := []todoist.Task{
		{ID: "1", Content: "dentist", Due: &todoist.Due{Date: "2024-06-10"}},
		{ID: "2", Content: "garbled", Due: &todoist.Due{Date: "not-a-date"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, tasks, time.UTC))
	out := buf.String()

	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "SUMMARY:dentist")
	assert.NotContains(t, out, "garbled")
}

func TestWritePDFProducesDocument(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tasks := append(exportTasks(), todoist.Task{
		ID: "3", Content: "book flights", ProjectID: "p1", Priority: 2,
		Due: &todoist.Due{String: "Jun 20", Date: "2024-06-20"},
	})

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, tasks, exportProjects, now))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 500)
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"json", "csv", "ics", "pdf"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}
