package ports

import (
	"context"

	"github.com/bnema/internode-usage-cli/internal/domain"
)

// ExportSink writes export bundles in one output format.
type ExportSink interface {
	// Facets reports which service endpoints the sink needs fetched.
	Facets() domain.Facets
	// WriteService persists one bundle and returns the written path relative
	// to the export directory.
	WriteService(ctx context.Context, bundle domain.ExportBundle) (string, error)
	// Finish is called once after every service was written.
	Finish(ctx context.Context, index domain.ExportIndex) error
	Close() error
}

// ExportSinkFactory opens a sink writing below dir.
type ExportSinkFactory func(dir string) (ExportSink, error)
