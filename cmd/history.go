package cmd

import (
	"fmt"

	historyadapter "github.com/bnema/internode-usage-cli/internal/adapters/render/history"
	"github.com/bnema/internode-usage-cli/internal/application"
	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/spf13/cobra"
)

const (
	chartWidth  = 60
	chartHeight = 10
)

func newHistoryCmd(app *app) *cobra.Command {
	var serviceID int64
	var days int
	var verbose bool
	var chart bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show daily usage of a service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, err := app.openAccount(cmd.Context(), true)
			if err != nil {
				return err
			}

			service, err := account.Service(cmd.Context(), domain.ServiceID(serviceID))
			if err != nil {
				return err
			}

			opts := application.HistoryOptions{Verbose: verbose}
			if cmd.Flags().Changed("days") {
				opts.Days = application.Days(days)
			}

			history, err := service.History(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			historyadapter.WriteTable(out, history, verbose)
			if chart {
				if _, err := fmt.Fprintf(out, "\n%s\n", historyadapter.Chart(history, chartWidth, chartHeight)); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().Int64Var(&serviceID, "service", 0, "Service ID")
	cmd.Flags().IntVar(&days, "days", 0, "Show at most this many days")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show the metered/unmetered breakdown")
	cmd.Flags().BoolVar(&chart, "chart", false, "Plot daily totals below the table")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}
