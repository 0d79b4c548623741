package todoist

import (
	"fmt"
	"time"
)

// Task represents a Todoist task as returned by the REST v2 API.
// Tasks are immutable as received; only the completion state is
// toggled through CloseTask/ReopenTask.
type Task struct {
	ID           string   `json:"id"`
	Content      string   `json:"content"`
	Description  string   `json:"description,omitempty"`
	ProjectID    string   `json:"project_id,omitempty"`
	SectionID    string   `json:"section_id,omitempty"`
	ParentID     string   `json:"parent_id,omitempty"`
	Priority     int      `json:"priority,omitempty"` // 1 (lowest) to 4 (urgent)
	Due          *Due     `json:"due,omitempty"`
	Labels       []string `json:"labels,omitempty"`
	IsCompleted  bool     `json:"is_completed,omitempty"`
	CommentCount int      `json:"comment_count,omitempty"`
	URL          string   `json:"url,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
}

// Due represents a task's due date descriptor.
type Due struct {
	String      string `json:"string,omitempty"`
	Date        string `json:"date,omitempty"`     // YYYY-MM-DD
	Datetime    string `json:"datetime,omitempty"` // RFC3339, possibly without a zone
	IsRecurring bool   `json:"is_recurring,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

// HasTime reports whether the due descriptor carries a time-of-day component.
func (d *Due) HasTime() bool {
	return d != nil && d.Datetime != ""
}

// Time resolves the due descriptor to an instant in loc. A date-only
// descriptor resolves to midnight. Zone-less datetimes (Todoist "floating"
// times) are interpreted in loc.
func (d *Due) Time(loc *time.Location) (time.Time, error) {
	if d == nil {
		return time.Time{}, fmt.Errorf("no due date")
	}
	if d.Datetime != "" {
		if t, err := time.Parse(time.RFC3339, d.Datetime); err == nil {
			return t, nil
		}
		t, err := time.ParseInLocation("2006-01-02T15:04:05", d.Datetime, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse due datetime %q: %w", d.Datetime, err)
		}
		return t, nil
	}
	if d.Date != "" {
		t, err := time.ParseInLocation("2006-01-02", d.Date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse due date %q: %w", d.Date, err)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("empty due descriptor")
}

// Project represents a Todoist project.
type Project struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Color          string `json:"color,omitempty"`
	ParentID       string `json:"parent_id,omitempty"`
	Order          int    `json:"order,omitempty"`
	CommentCount   int    `json:"comment_count,omitempty"`
	IsShared       bool   `json:"is_shared,omitempty"`
	IsFavorite     bool   `json:"is_favorite,omitempty"`
	IsInboxProject bool   `json:"is_inbox_project,omitempty"`
	ViewStyle      string `json:"view_style,omitempty"`
	URL            string `json:"url,omitempty"`
}

// Section subdivides a project.
type Section struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Order     int    `json:"order,omitempty"`
}

// Label represents a Todoist label.
type Label struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	Order      int    `json:"order,omitempty"`
	IsFavorite bool   `json:"is_favorite,omitempty"`
}

// Comment represents a comment attached to a task.
type Comment struct {
	ID       string `json:"id"`
	TaskID   string `json:"task_id,omitempty"`
	Content  string `json:"content"`
	PostedAt string `json:"posted_at,omitempty"`
}

// User represents the authenticated user's profile.
type User struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	IsPremium bool   `json:"is_premium,omitempty"`
	JoinedAt  string `json:"joined_at,omitempty"`
}

// APIError represents an error returned by the Todoist API.
type APIError struct {
	// Op is the operation that failed (e.g., "listTasks", "closeTask")
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
		return fmt.Sprintf("todoist %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("todoist %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *APIError) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the error is an authentication failure.
// Authentication failures are never retried and should be surfaced to the
// user as a token problem rather than a transient error.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
