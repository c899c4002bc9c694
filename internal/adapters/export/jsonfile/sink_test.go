package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generated = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func TestSinkWritesServiceFileWithSortedIndentedKeys(t *testing.T) {
	dir := t.TempDir()
	sink, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.AllFacets, sink.Facets())

	usage := domain.UsageSnapshot{Name: "total", PlanInterval: "Monthly", Quota: 100, Rollover: "2026-11-05", Unit: "bytes", Usage: 25}
	path, err := sink.WriteService(context.Background(), domain.ExportBundle{
		Generated: generated,
		ServiceID: 1234567,
		Facets:    domain.AllFacets,
		Service:   domain.ServiceMetadata{"plan": "Easy Naked 150", "excess-shaped": true, "comment": nil},
		History: domain.History{
			{Date: "2026-10-16", Total: domain.Int64(900), Metered: &domain.TrafficSplit{Down: domain.Int64(900)}},
		},
		Usage: &usage,
	})
	require.NoError(t, err)
	assert.Equal(t, "1234567.json", path)

	data, err := os.ReadFile(filepath.Join(dir, path))
	require.NoError(t, err)
	content := string(data)

	assert.JSONEq(t, `{
		"generated": "2026-10-18T09:30:00Z",
		"history": {"2026-10-16": {"metered": {"down": 900}, "total": 900}},
		"service": {"comment": null, "excess-shaped": true, "plan": "Easy Naked 150"},
		"usage": {"name": "total", "plan-interval": "Monthly", "quota": 100, "rollover": "2026-11-05", "unit": "bytes", "usage": 25}
	}`, content)
	assert.True(t, strings.HasPrefix(content, "{\n    \"generated\""))
	assert.Less(t, strings.Index(content, `"history"`), strings.Index(content, `"service"`))
	assert.Less(t, strings.Index(content, `"service"`), strings.Index(content, `"usage"`))
	assert.NotContains(t, content, `"up"`)
}

func TestSinkFinishWritesIndex(t *testing.T) {
	dir := t.TempDir()
	sink, err := New(dir)
	require.NoError(t, err)

	index := domain.NewExportIndex(generated)
	index.Services[1234567] = "1234567.json"
	require.NoError(t, sink.Finish(context.Background(), index))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"generated": "2026-10-18T09:30:00Z", "services": {"1234567": "1234567.json"}}`, string(data))
}

func TestSinkWriteFailureIsIOError(t *testing.T) {
	sink, err := New(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	_, err = sink.WriteService(context.Background(), domain.ExportBundle{Generated: generated, ServiceID: 1})
	require.ErrorIs(t, err, domain.ErrIO)
}
