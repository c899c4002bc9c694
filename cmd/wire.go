package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/internode-usage-cli/internal/adapters/export/csvfile"
	"github.com/bnema/internode-usage-cli/internal/adapters/export/jsonfile"
	"github.com/bnema/internode-usage-cli/internal/adapters/export/sqlite"
	"github.com/bnema/internode-usage-cli/internal/adapters/internode"
	statusadapter "github.com/bnema/internode-usage-cli/internal/adapters/render/status"
	tomlrepo "github.com/bnema/internode-usage-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/internode-usage-cli/internal/adapters/secrets/chain"
	"github.com/bnema/internode-usage-cli/internal/application"
	"github.com/bnema/internode-usage-cli/internal/config"
	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/bnema/internode-usage-cli/internal/logger"
	"github.com/bnema/internode-usage-cli/internal/ports"
	"github.com/gen2brain/beeep"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	viper     *viper.Viper
	configDir string

	settings       config.Settings
	log            *zap.Logger
	credentials    *application.CredentialService
	exporter       *application.Exporter
	statusRenderer func([]application.ServiceStatus, statusadapter.RenderOptions) (string, error)
	notify         func(title, message string) error
	now            func() time.Time
}

func newApp() *app {
	return &app{
		viper:          viper.New(),
		statusRenderer: statusadapter.Render,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		now: time.Now,
	}
}

// wire loads settings once flags are parsed and builds the services the
// commands share.
func (a *app) wire(cmd *cobra.Command) error {
	settings, err := config.Load(a.viper, a.configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.settings = settings

	logCfg := logger.Config{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
		Output: settings.Log.Output,
	}
	if settings.Log.Output == "" || settings.Log.Output == "stderr" {
		a.log = logger.NewWithWriter(logCfg, cmd.ErrOrStderr())
	} else {
		a.log, err = logger.New(logCfg)
		if err != nil {
			return fmt.Errorf("wire logger: %w", err)
		}
	}

	profilesConfig := viper.New()
	profilesConfig.Set(tomlrepo.ProfilesPathKey, settings.ProfilesPath())
	repo, err := tomlrepo.NewRepository(profilesConfig)
	if err != nil {
		return fmt.Errorf("wire profile repository: %w", err)
	}

	secretStore, err := chainstore.Open(settings.Secrets.Backend, settings.SecretsDir())
	if err != nil {
		return fmt.Errorf("wire secret store: %w", err)
	}

	clock := ports.SystemClock{}
	a.credentials = application.NewCredentialService(repo, secretStore, clock)
	a.exporter = application.NewExporter(map[domain.ExportFormat]ports.ExportSinkFactory{
		domain.ExportFormatJSON:   jsonfile.New,
		domain.ExportFormatCSV:    csvfile.New,
		domain.ExportFormatSQLite: sqlite.New,
	}, clock, a.log)

	a.log.Debug("configuration loaded",
		zap.String("dir", settings.Dir),
		zap.String("base_url", settings.API.BaseURL),
		zap.String("secrets_backend", settings.Secrets.Backend),
	)

	return nil
}

// openAccount resolves credentials and returns an account bound to a fresh
// API client.
func (a *app) openAccount(ctx context.Context, filterType bool) (*application.Account, error) {
	profileName := domain.ProfileName(a.settings.Profile)
	creds, profile, err := a.credentials.ResolveOrDefault(ctx, a.settings.Credentials(), profileName)
	if err != nil {
		return nil, err
	}

	client, err := internode.NewClient(creds, internode.Options{
		BaseURL:         a.settings.API.BaseURL,
		Timeout:         a.settings.API.Timeout,
		Logger:          a.log,
		DetectErrorBody: a.settings.API.DetectErrorBody,
	})
	if err != nil {
		return nil, fmt.Errorf("wire api client: %w", err)
	}

	opts := application.AccountOptions{
		ServiceType: a.settings.Services.Type,
		FilterType:  a.settings.Services.FilterType && filterType,
	}
	if profile.ServiceType != "" {
		opts.ServiceType = profile.ServiceType
	}

	return application.NewAccount(client, opts), nil
}
