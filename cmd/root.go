package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithApp(newApp())
}

func newRootCmdWithApp(app *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "iu",
		Short:         "Internode usage CLI (iu): export broadband account usage",
		Long:          "iu (Internode Usage) reads service details, daily usage history and current quota usage from the Internode account API, and exports them as JSON, CSV or SQLite.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configDir, "config-dir", "", "Config directory (default ~/.config/internode-usage)")
	flags.String("profile", "", "Credential profile (default \"default\")")
	flags.String("username", "", "Account username (overrides IU_USERNAME and profiles)")
	flags.String("password", "", "Account password (overrides IU_PASSWORD and profiles)")
	for _, key := range []string{"profile", "username", "password"} {
		_ = app.viper.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAuthCmd(app),
		newExportCmd(app),
		newHistoryCmd(app),
		newServicesCmd(app),
		newUsageCmd(app),
	)

	return rootCmd
}
