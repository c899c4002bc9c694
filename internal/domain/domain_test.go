package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceMetadataCoerceBooleans(t *testing.T) {
	tests := []struct {
		name string
		text any
		want bool
	}{
		{name: "yes", text: "yes", want: true},
		{name: "no", text: "no", want: false},
		{name: "upper case is not yes", text: "YES", want: false},
		{name: "empty", text: "", want: false},
		{name: "missing text", text: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := ServiceMetadata{
				"excess-charged":         tt.text,
				"excess-restrict-access": tt.text,
				"excess-shaped":          tt.text,
			}
			require.NoError(t, meta.Coerce())

			assert.Equal(t, tt.want, meta["excess-charged"])
			assert.Equal(t, tt.want, meta["excess-restrict-access"])
			assert.Equal(t, tt.want, meta["excess-shaped"])
		})
	}
}

func TestServiceMetadataCoerceIntegers(t *testing.T) {
	meta := ServiceMetadata{"id": "1234567", "quota": " 150000000000 ", "plan": "Easy Naked 150"}
	require.NoError(t, meta.Coerce())

	id, ok := meta.Int("id")
	require.True(t, ok)
	assert.Equal(t, int64(1234567), id)

	quota, ok := meta.Int("quota")
	require.True(t, ok)
	assert.Equal(t, int64(150_000_000_000), quota)

	plan, ok := meta.String("plan")
	require.True(t, ok)
	assert.Equal(t, "Easy Naked 150", plan)
}

func TestServiceMetadataCoerceLeavesAbsentFieldsAbsent(t *testing.T) {
	meta := ServiceMetadata{"plan": "x"}
	require.NoError(t, meta.Coerce())

	assert.NotContains(t, meta, "id")
	assert.NotContains(t, meta, "excess-shaped")
}

func TestServiceMetadataCoerceRejectsBadIntegers(t *testing.T) {
	for _, raw := range []any{"abc", "-5", nil, "1.5"} {
		t.Run(fmt.Sprint(raw), func(t *testing.T) {
			meta := ServiceMetadata{"quota": raw}
			err := meta.Coerce()
			require.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestHistoryJSONOmitsUnreportedFields(t *testing.T) {
	history := History{
		{
			Date:      "2026-10-01",
			Total:     Int64(300),
			Metered:   &TrafficSplit{Down: Int64(200)},
			Unmetered: &TrafficSplit{Up: Int64(40), Down: Int64(60)},
		},
		{Date: "2026-10-02"},
	}

	data, err := json.Marshal(history)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"2026-10-01": {"total": 300, "metered": {"down": 200}, "unmetered": {"up": 40, "down": 60}},
		"2026-10-02": {}
	}`, string(data))
	assert.NotContains(t, string(data), `"up": 0`)
}

func TestTrafficSplitZeroDefaults(t *testing.T) {
	var missing *TrafficSplit
	assert.Equal(t, int64(0), missing.UpOrZero())
	assert.Equal(t, int64(0), missing.DownOrZero())

	partial := &TrafficSplit{Down: Int64(7)}
	assert.Equal(t, int64(0), partial.UpOrZero())
	assert.Equal(t, int64(7), partial.DownOrZero())

	assert.Equal(t, int64(0), HistoryDay{}.TotalOrZero())
}

func TestHistoryFirst(t *testing.T) {
	history := History{{Date: "a"}, {Date: "b"}, {Date: "c"}}

	assert.Equal(t, History{{Date: "a"}, {Date: "b"}}, history.First(2))
	assert.Equal(t, history, history.First(3))
	assert.Equal(t, history, history.First(10))
	assert.Equal(t, history, history.First(-1))
	assert.Empty(t, history.First(0))
}

func TestUsageSnapshotPercentUsed(t *testing.T) {
	u := UsageSnapshot{Quota: 200, Usage: 50}
	assert.InDelta(t, 25.0, u.PercentUsed(), 0.001)
	assert.Equal(t, int64(150), u.Remaining())

	over := UsageSnapshot{Quota: 100, Usage: 150}
	assert.Equal(t, int64(0), over.Remaining())

	assert.Zero(t, UsageSnapshot{Usage: 10}.PercentUsed())
}

func TestExportBundleJSONIncludesOnlyFetchedFacets(t *testing.T) {
	generated := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	bundle := ExportBundle{
		Generated: generated,
		ServiceID: 42,
		Facets:    Facets{History: true},
	}

	data, err := json.Marshal(bundle)
	require.NoError(t, err)
	assert.JSONEq(t, `{"generated": "2026-10-18T09:30:00Z", "history": {}}`, string(data))
}

func TestExportIndexJSON(t *testing.T) {
	index := NewExportIndex(time.Date(2026, 10, 18, 9, 30, 0, 0, time.FixedZone("AEDT", 11*3600)))
	index.Services[42] = "42.json"

	data, err := json.Marshal(index)
	require.NoError(t, err)
	assert.JSONEq(t, `{"generated": "2026-10-17T22:30:00Z", "services": {"42": "42.json"}}`, string(data))
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, ExportFormatCSV, format)

	_, err = ParseExportFormat("xml")
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestAPIErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("get service: %w", &APIError{Message: "Service not found"})

	assert.True(t, errors.Is(err, ErrAPI))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Service not found", apiErr.Message)
}

func TestCredentialsStringRedactsPassword(t *testing.T) {
	creds := Credentials{Username: "alice", Password: "hunter2"}

	assert.NotContains(t, creds.String(), "hunter2")
	assert.NotContains(t, fmt.Sprintf("%v %+v %#v", creds, creds, creds), "hunter2")
	assert.False(t, creds.Empty())
	assert.True(t, Credentials{Username: "alice"}.Empty())
}

func TestSecretRefRoundTrip(t *testing.T) {
	assert.Equal(t, "internode/work/password", SecretRef("work"))

	name, err := ParseSecretRef(SecretRef("home-nbn"))
	require.NoError(t, err)
	assert.Equal(t, ProfileName("home-nbn"), name)
}

func TestParseSecretRefRejectsForeignKeys(t *testing.T) {
	for _, key := range []string{
		"",
		"internode/password",
		"internode//password",
		"openai/default/password",
		"internode/default/api_key",
		"internode/a/b/password",
		"internode/../password",
		"internode/ default/password",
		"/internode/default/password",
	} {
		t.Run(key, func(t *testing.T) {
			_, err := ParseSecretRef(key)
			require.ErrorIs(t, err, ErrInvalidSecretRef)
		})
	}
}

func TestValidateProfileName(t *testing.T) {
	require.NoError(t, ValidateProfileName("default"))
	require.NoError(t, ValidateProfileName("work.nbn_2"))

	for _, name := range []ProfileName{"", "  ", ".", "..", "a/b", `a\b`, "tab\there", " lead"} {
		assert.ErrorIs(t, ValidateProfileName(name), ErrInvalidProfileName, "name %q", name)
	}
}
