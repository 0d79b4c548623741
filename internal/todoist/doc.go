// Package todoist provides a client for the Todoist REST v2 API.
//
// This package wraps the task-source endpoints the dashboard consumes:
//   - Listing tasks (optionally by project, filter expression, or label)
//   - Fetching projects, sections, labels, and task comments
//   - Closing and reopening tasks (the completion toggle)
//   - Fetching the authenticated user's profile
//
// All calls authenticate with a caller-supplied bearer token. Transient
// failures (network errors, 5xx, 429) are retried up to two times;
// authentication failures (401) are never retried and are reported through
// APIError.Unauthorized so callers can surface a token problem instead of a
// generic load failure.
//
// # Example Usage
//
//	client, err := todoist.NewClient(token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tasks, err := client.ListTasks(ctx, todoist.ListTasksOptions{
//	    ProjectID: projectID,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Mark the first task as done.
//	if err := client.CloseTask(ctx, tasks[0].ID); err != nil {
//	    log.Fatal(err)
//	}
package todoist
