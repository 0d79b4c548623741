package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/upnext/upnext/internal/agenda"
	"github.com/upnext/upnext/internal/cache"
	"github.com/upnext/upnext/internal/dashboard"
	"github.com/upnext/upnext/internal/todoist"
	"github.com/upnext/upnext/internal/tokens"
)

// viewFlags are the task selection flags shared by agenda and export.
type viewFlags struct {
	projectID string
	search    string
	priority  int
	labels    []string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.projectID, "project-id", "", "limit to one project")
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive substring match on task content")
	cmd.Flags().IntVar(&f.priority, "priority", 0, "exact priority 1-4 (0 means any)")
	cmd.Flags().StringSliceVar(&f.labels, "labels", nil, "match tasks carrying any of these labels")
}

func (f *viewFlags) request() dashboard.AgendaRequest {
	return dashboard.AgendaRequest{
		ProjectID: f.projectID,
		Now:       time.Now(),
		Filter: agenda.Filter{
			Search:   f.search,
			Priority: f.priority,
			Labels:   f.labels,
		},
	}
}

// resolveTodoistToken returns the Todoist token: config (which includes the
// TODOIST_TOKEN environment variable) first, then the token store.
func resolveTodoistToken() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Todoist.Token != "" {
		return cfg.Todoist.Token, nil
	}

	store, err := tokens.NewStore()
	if err != nil {
		return "", err
	}
	token, err := store.Load(tokens.ServiceTodoist)
	if err != nil {
		return "", fmt.Errorf("no Todoist token found; run 'upnext login todoist <token>' or set TODOIST_TOKEN")
	}
	return token, nil
}

// newDashboard builds a dashboard service for CLI use.
func newDashboard() (*dashboard.Service, error) {
	token, err := resolveTodoistToken()
	if err != nil {
		return nil, err
	}
	client, err := todoist.NewClient(token)
	if err != nil {
		return nil, err
	}
	return dashboard.New(client, cache.New(), token, nil, nil), nil
}

func newAgendaCmd() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Show overdue, today, and upcoming tasks",
		Long: `Fetch your active Todoist tasks and print them grouped by date: overdue
tasks first, then tasks due today, then upcoming ones. Tasks without a due
date are counted but not listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newDashboard()
			if err != nil {
				return err
			}

			view, err := svc.Agenda(context.Background(), flags.request())
			if err != nil {
				return fmt.Errorf("failed to load agenda: %w", err)
			}

			printBucket(cmd, "Overdue", view.Overdue)
			printBucket(cmd, "Today", view.Today)
			printBucket(cmd, "Upcoming", view.Upcoming)

			cmd.Printf("%d tasks, %d overdue, %d due today\n",
				view.Stats.Total, view.Stats.Overdue, view.Stats.Today)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func printBucket(cmd *cobra.Command, title string, tasks []todoist.Task) {
	if len(tasks) == 0 {
		return
	}
	cmd.Printf("%s:\n", title)
	for _, t := range tasks {
		line := fmt.Sprintf("  [P%d] %s", t.Priority, t.Content)
		if t.Due != nil && t.Due.String != "" {
			line += " (" + t.Due.String + ")"
		}
		cmd.Println(line)
	}
	cmd.Println()
}
