package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Close or reopen individual tasks",
	}

	cmd.AddCommand(newTaskToggleCmd("close", "Mark a task as completed", "closed", true))
	cmd.AddCommand(newTaskToggleCmd("reopen", "Reopen a completed task", "reopened", false))
	return cmd
}

func newTaskToggleCmd(use, short, done string, complete bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newDashboard()
			if err != nil {
				return err
			}
			if err := svc.ToggleCompletion(context.Background(), args[0], complete); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s %s\n", args[0], done)
			return nil
		},
	}
}
