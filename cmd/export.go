package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/upnext/upnext/internal/agenda"
	"github.com/upnext/upnext/internal/export"
)

func newExportCmd() *cobra.Command {
	var flags viewFlags
	var formatName string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as JSON, CSV, iCalendar, or PDF",
		Long: `Export your active tasks in a machine-readable or printable format.
The same selection flags as the agenda command apply, so an export always
matches what the dashboard shows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			svc, err := newDashboard()
			if err != nil {
				return err
			}

			ctx := context.Background()
			req := flags.request()
			tasks, err := svc.Tasks(ctx, req.ProjectID)
			if err != nil {
				return fmt.Errorf("failed to load tasks: %w", err)
			}
			tasks = agenda.FilterTasks(tasks, req.Filter)

			projects, err := svc.Projects(ctx)
			if err != nil {
				return fmt.Errorf("failed to load projects: %w", err)
			}
			names := make(map[string]string, len(projects))
			for _, p := range projects {
				names[p.ID] = p.Name
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case export.FormatJSON:
				return export.WriteJSON(w, tasks, names)
			case export.FormatCSV:
				return export.WriteCSV(w, tasks, names)
			case export.FormatICS:
				return export.WriteICS(w, tasks, req.Now.Location())
			case export.FormatPDF:
				return export.WritePDF(w, tasks, names, req.Now)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&formatName, "format", "json", "export format: json, csv, ics, or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
