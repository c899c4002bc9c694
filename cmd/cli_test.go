package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/internode-usage-cli/internal/adapters/internode/internodetest"
	"github.com/bnema/internode-usage-cli/internal/application"
	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/bnema/internode-usage-cli/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportWritesJSONFiles(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)
	outputDir := filepath.Join(home, "export")

	stdout, _, err := executeCLI(t, home, "export", "--output", outputDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "exported 1 services as json")
	assert.Contains(t, stdout, filepath.Join(outputDir, "1234567.json"))

	index, err := os.ReadFile(filepath.Join(outputDir, "account.json"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `"1234567": "1234567.json"`)

	service, err := os.ReadFile(filepath.Join(outputDir, "1234567.json"))
	require.NoError(t, err)
	assert.True(t, json.Valid(service))
	assert.Contains(t, string(service), `"plan": "Easy Naked 150"`)

	assert.NoFileExists(t, filepath.Join(outputDir, "7654321.json"))
}

func TestExportCSVFormatFlag(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)
	outputDir := filepath.Join(home, "export")

	_, _, err := executeCLI(t, home, "export", "--format", "csv", "--output", outputDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outputDir, "1234567.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Date,Unmetered Up,Unmetered Down,Metered Up,Metered Down,Total\r\n")
	assert.NoFileExists(t, filepath.Join(outputDir, "account.json"))
}

func TestExportSQLiteFormat(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)
	outputDir := filepath.Join(home, "export")

	stdout, _, err := executeCLI(t, home, "export", "--format", "sqlite", "--output", outputDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "exported 1 services as sqlite")
	assert.FileExists(t, filepath.Join(outputDir, "usage.db"))
}

func TestExportDaysFromEnvironment(t *testing.T) {
	home := t.TempDir()
	server := startServer(t)
	setEnvCredentials(t)
	t.Setenv("IU_EXPORT_DAYS", "2")

	_, _, err := executeCLI(t, home, "export", "--output", filepath.Join(home, "export"))
	require.NoError(t, err)

	var counts []string
	for _, request := range server.Requests() {
		if request.Path == fmt.Sprintf("/%d/history", internodetest.EligibleID) {
			counts = append(counts, request.Query.Get("count"))
		}
	}
	assert.Equal(t, []string{"3"}, counts)
}

func TestExportFormatFromConfigFile(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)

	configDir := filepath.Join(home, "custom-config")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("[export]\nformat = \"csv\"\n"), 0o644))
	outputDir := filepath.Join(home, "export")

	_, _, err := executeCLI(t, home, "--config-dir", configDir, "export", "--output", outputDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outputDir, "1234567.csv"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)

	_, _, err := executeCLI(t, home, "export", "--format", "xml", "--output", filepath.Join(home, "export"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format \"xml\"")
}

func TestExportWithWrongPasswordWritesNothing(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	t.Setenv("IU_USERNAME", internodetest.Username)
	t.Setenv("IU_PASSWORD", "wrong")
	outputDir := filepath.Join(home, "export")

	_, _, err := executeCLI(t, home, "export", "--output", outputDir)
	require.ErrorIs(t, err, domain.ErrAuthentication)

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMissingCredentialsSuggestsAuthSet(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	t.Setenv("IU_USERNAME", "")
	t.Setenv("IU_PASSWORD", "")

	_, _, err := executeCLI(t, home, "services")
	require.ErrorIs(t, err, domain.ErrAuthentication)
	assert.Contains(t, err.Error(), "iu auth set --profile default")
}

func TestServicesListsEligibleIDs(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)

	stdout, _, err := executeCLI(t, home, "services")
	require.NoError(t, err)
	assert.Equal(t, "1234567\n", stdout)

	stdout, _, err = executeCLI(t, home, "services", "--all")
	require.NoError(t, err)
	assert.Equal(t, "1234567\tPersonal_ADSL\n7654321\tHosting\n", stdout)
}

func TestUsageRendersQuota(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)

	stdout, _, err := executeCLI(t, home, "usage")
	require.NoError(t, err)
	assert.Contains(t, stdout, "services: 1")
	assert.Contains(t, stdout, "Easy Naked 150, 24 Mbits/sec (1234567)")
	assert.Contains(t, stdout, "25% used")
}

func TestUsageJSONOutput(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)

	stdout, _, err := executeCLI(t, home, "usage", "--service", "1234567", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, `"ServiceID": 1234567`)
	assert.Contains(t, stdout, `"quota": 150000000000`)
}

func TestUsageUnlistedServiceFails(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)

	_, _, err := executeCLI(t, home, "usage", "--service", "7654321", "--json")
	require.ErrorIs(t, err, application.ErrServiceNotListed)
}

func TestUsageAlertSendsNotification(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)

	type alert struct{ title, message string }
	var alerts []alert
	app := newApp()
	app.notify = func(title, message string) error {
		alerts = append(alerts, alert{title, message})
		return nil
	}

	stdout, _, err := executeCLIWithApp(t, home, app, "usage", "--alert-at", "20")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[alert]")
	require.Len(t, alerts, 1)
	assert.Equal(t, "Internode service 1234567", alerts[0].title)
	assert.Equal(t, "25% of quota used", alerts[0].message)

	alerts = nil
	app = newApp()
	app.notify = func(title, message string) error {
		alerts = append(alerts, alert{title, message})
		return nil
	}
	_, _, err = executeCLIWithApp(t, home, app, "usage", "--alert-at", "50")
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestUsageNotificationFailureIsNotFatal(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)

	app := newApp()
	app.notify = func(string, string) error { return assert.AnError }

	_, stderr, err := executeCLIWithApp(t, home, app, "usage", "--json", "--alert-at", "10")
	require.NoError(t, err)
	assert.Contains(t, stderr, "desktop notification failed")
}

func TestHistoryLimitsDays(t *testing.T) {
	home := t.TempDir()
	server := startServer(t)
	setEnvCredentials(t)

	stdout, _, err := executeCLI(t, home, "history", "--service", "1234567", "--days", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2026-10-15")
	assert.Contains(t, stdout, "2026-10-16")
	assert.NotContains(t, stdout, "2026-10-17")
	assert.Contains(t, stdout, "2 days, 2.4 kB total")

	requests := server.Requests()
	last := requests[len(requests)-1]
	assert.Equal(t, "/1234567/history", last.Path)
	assert.Equal(t, "3", last.Query.Get("count"))
	assert.Equal(t, "0", last.Query.Get("verbose"))
}

func TestHistoryChart(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)

	stdout, _, err := executeCLI(t, home, "history", "--service", "1234567", "--verbose", "--chart")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Unmetered Down")
	assert.Contains(t, stdout, "daily total (MB), 2026-10-15 to 2026-10-17")
}

func TestHistoryRequiresServiceFlag(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	setEnvCredentials(t)

	_, _, err := executeCLI(t, home, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"service\" not set")
}

func TestAuthProfileLifecycle(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	t.Setenv("IU_USERNAME", "")
	t.Setenv("IU_PASSWORD", "")

	stdout, _, err := executeCLI(t, home,
		"auth", "set",
		"--profile", "work",
		"--username", internodetest.Username,
		"--password", internodetest.Password,
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "saved credentials for profile work")

	secret, err := os.ReadFile(filepath.Join(home, ".config", "internode-usage", "secrets", "work.password"))
	require.NoError(t, err)
	assert.Equal(t, internodetest.Password, string(secret))

	stdout, _, err = executeCLI(t, home, "auth", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "work")
	assert.Contains(t, stdout, internodetest.Username)

	stdout, _, err = executeCLI(t, home, "services", "--profile", "work")
	require.NoError(t, err)
	assert.Equal(t, "1234567\n", stdout)

	_, _, err = executeCLI(t, home, "auth", "remove", "--profile", "work")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(home, ".config", "internode-usage", "secrets", "work.password"))

	_, _, err = executeCLI(t, home, "services", "--profile", "work")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iu auth set --profile work")
}

func TestAuthSetRequiresPassword(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	t.Setenv("IU_PASSWORD", "")

	_, _, err := executeCLI(t, home, "auth", "set", "--username", internodetest.Username)
	require.ErrorIs(t, err, application.ErrInvalidProfile)
}

func TestAuthListEmpty(t *testing.T) {
	home := t.TempDir()
	startServer(t)

	stdout, _, err := executeCLI(t, home, "auth", "list")
	require.NoError(t, err)
	assert.Equal(t, "No profiles stored.\n", stdout)
}

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestUnknownSecretsBackendFails(t *testing.T) {
	home := t.TempDir()
	startServer(t)
	t.Setenv("IU_SECRETS_BACKEND", "vault")

	_, _, err := executeCLI(t, home, "auth", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wire secret store")
}

// startServer points the CLI at a fake API and keeps secrets in files.
func startServer(t *testing.T) *internodetest.Server {
	t.Helper()

	server := internodetest.NewServer(t)
	t.Setenv("IU_API_BASE_URL", server.BaseURL())
	t.Setenv("IU_SECRETS_BACKEND", "file")
	return server
}

func setEnvCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("IU_USERNAME", internodetest.Username)
	t.Setenv("IU_PASSWORD", internodetest.Password)
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWithApp(t, home, newApp(), args...)
}

func executeCLIWithApp(t *testing.T, home string, app *app, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmdWithApp(app)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
