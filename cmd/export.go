package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bnema/internode-usage-cli/internal/application"
	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newExportCmd(app *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export metadata, history and usage of every eligible service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := domain.ParseExportFormat(app.settings.Export.Format)
			if err != nil {
				return err
			}

			account, err := app.openAccount(cmd.Context(), true)
			if err != nil {
				return err
			}

			outputDir := app.settings.Export.Dir
			opts := application.ExportOptions{
				Days:    app.settings.Export.Days,
				Verbose: verbose,
			}

			var index domain.ExportIndex
			err = runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Exporting services...", func(ctx context.Context) error {
				var err error
				index, err = app.exporter.ExportAll(ctx, account, outputDir, format, opts)
				return err
			})
			if err != nil {
				return err
			}

			return writeExportSummary(cmd, outputDir, format, index)
		},
	}

	cmd.Flags().StringP("format", "f", "", "Output format (json|csv|sqlite)")
	cmd.Flags().StringP("output", "o", "", "Output directory")
	cmd.Flags().Int("days", 0, "Export at most this many days of history (0 for all)")
	cmd.Flags().BoolVar(&verbose, "verbose", true, "Include the metered/unmetered breakdown in history")
	_ = app.viper.BindPFlag("export.format", cmd.Flags().Lookup("format"))
	_ = app.viper.BindPFlag("export.dir", cmd.Flags().Lookup("output"))
	_ = app.viper.BindPFlag("export.days", cmd.Flags().Lookup("days"))

	return cmd
}

func writeExportSummary(cmd *cobra.Command, outputDir string, format domain.ExportFormat, index domain.ExportIndex) error {
	ids := make([]domain.ServiceID, 0, len(index.Services))
	for id := range index.Services {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := cmd.OutOrStdout()
	for _, id := range ids {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", id, filepath.Join(outputDir, index.Services[id])); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(out, "exported %d services as %s to %s\n", len(ids), format, outputDir)
	return err
}
