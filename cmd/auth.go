package cmd

import (
	"fmt"

	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored account credentials",
	}

	cmd.AddCommand(newAuthSetCmd(app), newAuthRemoveCmd(app), newAuthListCmd(app))

	return cmd
}

func newAuthSetCmd(app *app) *cobra.Command {
	var serviceType string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store credentials under a profile",
		Long:  "Store the --username and --password (or IU_USERNAME and IU_PASSWORD) under the profile selected with --profile. The password goes to the secret store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile := domain.ProfileName(app.settings.Profile)
			creds := app.settings.Credentials()

			if err := app.credentials.SetCredentials(cmd.Context(), profile, creds.Username, creds.Password, serviceType); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "saved credentials for profile %s\n", profile)
			return err
		},
	}

	cmd.Flags().StringVar(&serviceType, "service-type", "", "Service type to export for this profile (default Personal_ADSL)")

	return cmd
}

func newAuthRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove a stored profile and its password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile := domain.ProfileName(app.settings.Profile)
			if err := app.credentials.RemoveCredentials(cmd.Context(), profile); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed profile %s\n", profile)
			return err
		},
	}
}

func newAuthListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.credentials.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}

			if len(profiles) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No profiles stored.")
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Profile", "Username", "Service Type", "Updated"})
			table.SetBorder(false)
			table.SetAutoWrapText(false)
			table.SetAutoFormatHeaders(false)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetCenterSeparator("")
			table.SetColumnSeparator("")
			table.SetRowSeparator("")
			table.SetHeaderLine(false)
			table.SetTablePadding("\t")
			table.SetNoWhiteSpace(true)

			for _, profile := range profiles {
				serviceType := profile.ServiceType
				if serviceType == "" {
					serviceType = domain.DefaultServiceType
				}
				table.Append([]string{
					string(profile.Name),
					profile.Username,
					serviceType,
					profile.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			table.Render()

			return nil
		},
	}
}
