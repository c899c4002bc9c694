package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newServicesCmd(app *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "services",
		Short: "List the service ids of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, err := app.openAccount(cmd.Context(), !all)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if all {
				listing, err := account.Listing(cmd.Context())
				if err != nil {
					return err
				}
				for _, entry := range listing {
					if _, err := fmt.Fprintf(out, "%s\t%s\n", entry.ID, entry.Type); err != nil {
						return err
					}
				}
				return nil
			}

			services, err := account.ListServices(cmd.Context())
			if err != nil {
				return err
			}
			for _, service := range services {
				if _, err := fmt.Fprintln(out, service.ID()); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List services of every type with their type")

	return cmd
}
