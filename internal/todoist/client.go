package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the Todoist REST v2 endpoint.
	DefaultBaseURL = "https://api.todoist.com/rest/v2"

	// maxRetries is the number of additional attempts after a transient
	// failure (network error, 5xx, 429). Authentication failures are never
	// retried.
	maxRetries = 2
)

// Client is a Todoist REST v2 API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new Todoist client authenticating with the given
// bearer token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("todoist token cannot be empty")
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// retryable reports whether a response status should be retried.
// 429 and 5xx are transient; everything else, notably 401, is not.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// do performs an authenticated request with the client's retry policy and
// returns the raw response body.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, u, nil)
		if err != nil {
			return nil, &APIError{Op: op, Err: fmt.Errorf("create request: %w", err)}
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-Id", uuid.NewString())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &APIError{Op: op, Err: ctx.Err()}
			}
			lastErr = &APIError{Op: op, Err: err}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = &APIError{Op: op, Err: fmt.Errorf("read response: %w", err)}
			continue
		}

		if resp.StatusCode >= 400 {
			apiErr := &APIError{
				Op:         op,
				StatusCode: resp.StatusCode,
				Message:    strings.TrimSpace(string(body)),
			}
			if retryable(resp.StatusCode) {
				lastErr = apiErr
				continue
			}
			return nil, apiErr
		}

		return body, nil
	}

	return nil, lastErr
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	body, err := c.do(ctx, op, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Op: op, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	return nil
}

// ListTasksOptions narrows a task listing. Zero value lists all active tasks.
type ListTasksOptions struct {
	// ProjectID limits the listing to one project
	ProjectID string

	// Filter is a Todoist filter expression (e.g., "due: 2024-01-02")
	Filter string

	// Label limits the listing to tasks carrying the label
	Label string
}

// ListTasks returns active tasks, optionally narrowed by opts.
func (c *Client) ListTasks(ctx context.Context, opts ListTasksOptions) ([]Task, error) {
	query := url.Values{}
	if opts.ProjectID != "" {
		query.Set("project_id", opts.ProjectID)
	}
	if opts.Filter != "" {
		query.Set("filter", opts.Filter)
	}
	if opts.Label != "" {
		query.Set("label", opts.Label)
	}

	var tasks []Task
	if err := c.get(ctx, "listTasks", "/tasks", query, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns a single task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.get(ctx, "getTask", "/tasks/"+id, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CloseTask marks a task as complete. Closing an already-closed task is a
// no-op upstream and succeeds.
func (c *Client) CloseTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, "closeTask", http.MethodPost, "/tasks/"+id+"/close", nil)
	return err
}

// ReopenTask reopens a completed task.
func (c *Client) ReopenTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, "reopenTask", http.MethodPost, "/tasks/"+id+"/reopen", nil)
	return err
}

// ListProjects returns all projects.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.get(ctx, "listProjects", "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a single project by ID.
func (c *Client) GetProject(ctx context.Context, id string) (*Project, error) {
	var project Project
	if err := c.get(ctx, "getProject", "/projects/"+id, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListSections returns the sections of a project.
func (c *Client) ListSections(ctx context.Context, projectID string) ([]Section, error) {
	query := url.Values{}
	if projectID != "" {
		query.Set("project_id", projectID)
	}

	var sections []Section
	if err := c.get(ctx, "listSections", "/sections", query, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// ListLabels returns all personal labels.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	var labels []Label
	if err := c.get(ctx, "listLabels", "/labels", nil, &labels); err != nil {
		return nil, err
	}
	return labels, nil
}

// ListComments returns the comments attached to a task.
func (c *Client) ListComments(ctx context.Context, taskID string) ([]Comment, error) {
	query := url.Values{}
	query.Set("task_id", taskID)

	var comments []Comment
	if err := c.get(ctx, "listComments", "/comments", query, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// GetUser returns the authenticated user's profile.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "getUser", "/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
