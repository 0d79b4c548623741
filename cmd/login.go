package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/upnext/upnext/internal/tokens"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <service> <token>",
		Short: "Store an API token for Todoist or Notion",
		Long: `Store an API token in the user cache directory so it does not need to be
passed via environment variables on every run.

Services: todoist, notion`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, token := args[0], args[1]

			store, err := tokens.NewStore()
			if err != nil {
				return err
			}
			if err := store.Save(service, token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s token\n", service)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which services have stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := tokens.NewStore()
			if err != nil {
				return err
			}
			for _, service := range []string{tokens.ServiceTodoist, tokens.ServiceNotion} {
				state := "not logged in"
				if store.Has(service) {
					state = "token stored"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", service, state)
			}
			return nil
		},
	})

	return cmd
}
