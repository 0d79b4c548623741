package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/upnext/upnext/internal/config"
)

// rootCmd represents the base command for the upnext application
var rootCmd = &cobra.Command{
	Use:   "upnext",
	Short: "A task dashboard for Todoist with a Notion read proxy",
	Long: `upnext aggregates your Todoist tasks into an agenda of overdue, today,
and upcoming work, and can serve the same views over HTTP together with a
read-only proxy for Notion databases.

It can run as:
  - A standalone CLI tool (default: show the agenda)
  - An HTTP server for the dashboard API`,
	SilenceUsage: true,
}

var configPath string

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// loadConfig loads the configuration honoring the --config flag and falling
// back to ~/.config/upnext/config.yaml when one exists.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		if base, err := os.UserConfigDir(); err == nil {
			candidate := filepath.Join(base, "upnext", "config.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}
	return config.Load(path)
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "upnext version %s\n" .Version}}`)

	// If no subcommand is provided, show the agenda by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "agenda")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(newAgendaCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newTasksCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("upnext version %s\n", version)
		},
	}
}
