package notion

import (
	"fmt"
	"strings"
)

// Database is the subset of a Notion database record the dashboard consumes.
// Notion responses are loosely structured; absent fields decode to zero
// values rather than failing.
type Database struct {
	Object         string                  `json:"object"`
	ID             string                  `json:"id"`
	Title          []RichText              `json:"title,omitempty"`
	Properties     map[string]PropertySpec `json:"properties,omitempty"`
	CreatedTime    string                  `json:"created_time,omitempty"`
	LastEditedTime string                  `json:"last_edited_time,omitempty"`
	URL            string                  `json:"url,omitempty"`
}

// RichText is one fragment of a Notion rich-text array.
type RichText struct {
	Type      string `json:"type,omitempty"`
	PlainText string `json:"plain_text,omitempty"`
}

// PropertySpec describes one column of a database's typed schema.
type PropertySpec struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// PlainTitle concatenates the database title fragments into a displayable
// string. Untitled databases yield "".
func (d *Database) PlainTitle() string {
	var b strings.Builder
	for _, rt := range d.Title {
		b.WriteString(rt.PlainText)
	}
	return b.String()
}

// searchResponse is the envelope of a /v1/search call.
type searchResponse struct {
	Results    []Database `json:"results"`
	HasMore    bool       `json:"has_more,omitempty"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// APIError represents an error returned by the Notion API.
type APIError struct {
	// Op is the operation that failed (e.g., "search", "getDatabase")
	Op string

	// StatusCode is the HTTP status of the upstream response, or 0 for
	// transport-level failures
	StatusCode int

	// Message is the upstream error body, if any
	Message string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("notion %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("notion %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *APIError) Unwrap() error {
	return e.Err
}
