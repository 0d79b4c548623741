// Package export serializes task collections for consumption outside the
// dashboard: JSON and CSV records, iCalendar feeds, and a printable PDF
// agenda.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/upnext/upnext/internal/todoist"
)

// Format identifies an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatICS  Format = "ics"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatICS, FormatPDF:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Record is the flat per-task export shape shared by the JSON and CSV
// encodings. Due carries the human-readable due string and is empty for
// undated tasks; Project is the resolved project name.
type Record struct {
	Content  string `json:"content"`
	Due      string `json:"due"`
	Priority int    `json:"priority"`
	Project  string `json:"project"`
}

// Records flattens tasks into export records, resolving project IDs to
// names via projectNames. Order is preserved. IDs missing from the map
// fall back to the raw ID rather than dropping the row.
func Records(tasks []todoist.Task, projectNames map[string]string) []Record {
	records := make([]Record, 0, len(tasks))
	for _, t := range tasks {
		project := projectNames[t.ProjectID]
		if project == "" {
			project = t.ProjectID
		}
		due := ""
		if t.Due != nil {
			due = t.Due.String
		}
		records = append(records, Record{
			Content:  t.Content,
			Due:      due,
			Priority: t.Priority,
			Project:  project,
		})
	}
	return records
}

// WriteJSON writes the tasks as an indented JSON array of records.
func WriteJSON(w io.Writer, tasks []todoist.Task, projectNames map[string]string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Records(tasks, projectNames))
}

// WriteCSV writes the tasks as CSV with a header row.
func WriteCSV(w io.Writer, tasks []todoist.Task, projectNames map[string]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"content", "due", "priority", "project"}); err != nil {
		return err
	}
	for _, r := range Records(tasks, projectNames) {
		row := []string{r.Content, r.Due, strconv.Itoa(r.Priority), r.Project}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
