// Package config resolves CLI settings from .env files, IU_* environment
// variables and an optional config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "IU"
	configName = "config"
	configType = "toml"
	appDirName = "internode-usage"

	DefaultBaseURL = "https://customer-webtools-api.internode.on.net/api/v1.5"
	defaultTimeout = 30 * time.Second
)

// Settings holds the resolved configuration.
type Settings struct {
	API      APISettings     `mapstructure:"api"`
	Services ServiceSettings `mapstructure:"services"`
	Export   ExportSettings  `mapstructure:"export"`
	Log      LogSettings     `mapstructure:"log"`
	Secrets  SecretSettings  `mapstructure:"secrets"`
	Profile  string          `mapstructure:"profile"`
	Username string          `mapstructure:"username"`
	Password string          `mapstructure:"password"`

	// Dir is the directory holding config.toml, profiles and file secrets.
	Dir string `mapstructure:"-"`
}

type APISettings struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	DetectErrorBody bool          `mapstructure:"detect_error_body"`
}

type ServiceSettings struct {
	Type       string `mapstructure:"type"`
	FilterType bool   `mapstructure:"filter_type"`
}

type ExportSettings struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
	Days   int    `mapstructure:"days"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type SecretSettings struct {
	Backend string `mapstructure:"backend"`
}

// DefaultDir returns ~/.config/internode-usage.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", appDirName), nil
}

// Load reads settings into v. dir may be empty to use DefaultDir.
func Load(v *viper.Viper, dir string) (Settings, error) {
	if v == nil {
		v = viper.New()
	}

	if dir == "" {
		defaultDir, err := DefaultDir()
		if err != nil {
			return Settings{}, err
		}
		dir = defaultDir
	}

	loadDotEnv(dir)
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	settings.Dir = dir

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func (s Settings) Validate() error {
	if strings.TrimSpace(s.API.BaseURL) == "" {
		return errors.New("api.base_url is empty")
	}
	if s.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", s.API.Timeout)
	}
	if s.Export.Days < 0 {
		return fmt.Errorf("export.days must not be negative, got %d", s.Export.Days)
	}
	if _, err := domain.ParseExportFormat(s.Export.Format); err != nil {
		return err
	}

	return nil
}

// Credentials returns the username and password supplied through the
// environment or config file.
func (s Settings) Credentials() domain.Credentials {
	return domain.Credentials{Username: s.Username, Password: s.Password}
}

func (s Settings) ProfilesPath() string {
	return filepath.Join(s.Dir, "profiles.toml")
}

func (s Settings) SecretsDir() string {
	return filepath.Join(s.Dir, "secrets")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", defaultTimeout)
	v.SetDefault("api.detect_error_body", true)
	v.SetDefault("services.type", domain.DefaultServiceType)
	v.SetDefault("services.filter_type", true)
	v.SetDefault("export.dir", "data")
	v.SetDefault("export.format", string(domain.ExportFormatJSON))
	v.SetDefault("export.days", 0)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("secrets.backend", "chain")
	v.SetDefault("profile", string(domain.DefaultProfile))
	v.SetDefault("username", "")
	v.SetDefault("password", "")
}

// loadDotEnv loads .env from the working directory and the config
// directory. Variables already set in the environment win.
func loadDotEnv(dir string) {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	paths = append(paths, filepath.Join(dir, ".env"))

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}
