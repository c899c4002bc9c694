package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ExportFormat string

const (
	ExportFormatJSON   ExportFormat = "json"
	ExportFormatCSV    ExportFormat = "csv"
	ExportFormatSQLite ExportFormat = "sqlite"
)

func ParseExportFormat(raw string) (ExportFormat, error) {
	format := ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
	switch format {
	case ExportFormatJSON, ExportFormatCSV, ExportFormatSQLite:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (json|csv|sqlite)", raw)
	}
}

// Facets selects which of the three service endpoints an export needs.
type Facets struct {
	Metadata bool
	History  bool
	Usage    bool
}

var AllFacets = Facets{Metadata: true, History: true, Usage: true}

// ExportBundle is the unit written for one service in one export run.
// Only the facets that were fetched are set.
type ExportBundle struct {
	Generated time.Time
	ServiceID ServiceID
	Facets    Facets
	Service   ServiceMetadata
	History   History
	Usage     *UsageSnapshot
}

func (b ExportBundle) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"generated": FormatGenerated(b.Generated),
	}
	if b.Facets.Metadata {
		service := b.Service
		if service == nil {
			service = ServiceMetadata{}
		}
		out["service"] = service
	}
	if b.Facets.History {
		history := b.History
		if history == nil {
			history = History{}
		}
		out["history"] = history
	}
	if b.Facets.Usage && b.Usage != nil {
		out["usage"] = b.Usage
	}

	return json.Marshal(out)
}

// ExportIndex lists the file written for each service, relative to the
// export directory.
type ExportIndex struct {
	Generated time.Time
	Services  map[ServiceID]string
}

func NewExportIndex(generated time.Time) ExportIndex {
	return ExportIndex{Generated: generated, Services: map[ServiceID]string{}}
}

func (i ExportIndex) MarshalJSON() ([]byte, error) {
	services := make(map[string]string, len(i.Services))
	for id, path := range i.Services {
		services[id.String()] = path
	}

	return json.Marshal(struct {
		Generated string            `json:"generated"`
		Services  map[string]string `json:"services"`
	}{
		Generated: FormatGenerated(i.Generated),
		Services:  services,
	})
}

// FormatGenerated renders an export timestamp as ISO-8601 in UTC.
func FormatGenerated(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
