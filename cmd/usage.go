package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	statusadapter "github.com/bnema/internode-usage-cli/internal/adapters/render/status"
	"github.com/bnema/internode-usage-cli/internal/application"
	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newUsageCmd(app *app) *cobra.Command {
	var serviceID int64
	var asJSON bool
	var alertAt float64

	cmd := &cobra.Command{
		Use:     "usage",
		Aliases: []string{"status"},
		Short:   "Fetch and display quota usage of the current period",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUsage(cmd, app, domain.ServiceID(serviceID), asJSON, alertAt)
		},
	}

	cmd.Flags().Int64Var(&serviceID, "service", 0, "Service ID (default: all eligible services)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().Float64Var(&alertAt, "alert-at", 0, "Send a desktop notification when usage reaches this percentage of quota")

	return cmd
}

func runUsage(cmd *cobra.Command, app *app, serviceID domain.ServiceID, asJSON bool, alertAt float64) error {
	account, err := app.openAccount(cmd.Context(), true)
	if err != nil {
		return err
	}

	var statuses []application.ServiceStatus
	fetch := func(ctx context.Context) error {
		var err error
		statuses, err = application.Statuses(ctx, account, serviceID)
		return err
	}

	if asJSON {
		if err := fetch(cmd.Context()); err != nil {
			return err
		}
	} else {
		if err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching usage...", fetch); err != nil {
			return err
		}
	}

	if err := writeStatusesOutput(cmd, app, statuses, alertAt, asJSON); err != nil {
		return err
	}

	notifyOverThreshold(app, statuses, alertAt)

	return nil
}

func writeStatusesOutput(cmd *cobra.Command, app *app, statuses []application.ServiceStatus, alertAt float64, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	rendered, err := app.statusRenderer(statuses, statusadapter.RenderOptions{
		Now:     app.now(),
		AlertAt: alertAt,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// notifyOverThreshold raises one desktop notification per service at or
// above alertAt. Notification failures are logged, never returned.
func notifyOverThreshold(app *app, statuses []application.ServiceStatus, alertAt float64) {
	for _, status := range statuses {
		if !status.OverThreshold(alertAt) {
			continue
		}

		title := fmt.Sprintf("Internode service %s", status.ServiceID)
		message := fmt.Sprintf("%.0f%% of quota used", status.Usage.PercentUsed())
		if err := app.notify(title, message); err != nil {
			app.log.Warn("desktop notification failed",
				zap.Stringer("service", status.ServiceID),
				zap.Error(err),
			)
		}
	}
}
