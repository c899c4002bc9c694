package application

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/bnema/internode-usage-cli/internal/ports"
	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("no export sink registered for format")

// ExportOptions tunes the history facet of an export.
type ExportOptions struct {
	// Days limits history to this many days; 0 exports all available days.
	Days int
	// Verbose requests the metered/unmetered breakdown.
	Verbose bool
}

func (o ExportOptions) historyOptions() HistoryOptions {
	opts := HistoryOptions{Verbose: o.Verbose}
	if o.Days > 0 {
		opts.Days = Days(o.Days)
	}
	return opts
}

// Exporter writes every eligible service of an account through an ExportSink.
type Exporter struct {
	sinks map[domain.ExportFormat]ports.ExportSinkFactory
	clock ports.Clock
	log   *zap.Logger
}

func NewExporter(sinks map[domain.ExportFormat]ports.ExportSinkFactory, clock ports.Clock, log *zap.Logger) *Exporter {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Exporter{
		sinks: sinks,
		clock: clock,
		log:   log.Named("export"),
	}
}

// ExportAll fetches and writes each service in listing order. Services
// written before a failure stay on disk.
func (e *Exporter) ExportAll(ctx context.Context, account *Account, outputDir string, format domain.ExportFormat, opts ExportOptions) (index domain.ExportIndex, err error) {
	generated := e.clock.Now().UTC()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return domain.ExportIndex{}, fmt.Errorf("%w: create output directory: %w", domain.ErrIO, err)
	}

	factory, ok := e.sinks[format]
	if !ok {
		return domain.ExportIndex{}, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}

	services, err := account.ListServices(ctx)
	if err != nil {
		return domain.ExportIndex{}, err
	}

	sink, err := factory(outputDir)
	if err != nil {
		return domain.ExportIndex{}, fmt.Errorf("open %s sink: %w", format, err)
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close %s sink: %w", format, closeErr))
		}
	}()

	index = domain.NewExportIndex(generated)
	for _, service := range services {
		bundle, err := service.Bundle(ctx, sink.Facets(), opts.historyOptions(), generated)
		if err != nil {
			return domain.ExportIndex{}, fmt.Errorf("export service %s: %w", service.ID(), err)
		}

		path, err := sink.WriteService(ctx, bundle)
		if err != nil {
			return domain.ExportIndex{}, fmt.Errorf("export service %s: %w", service.ID(), err)
		}

		index.Services[service.ID()] = path
		e.log.Info("service exported",
			zap.Stringer("service", service.ID()),
			zap.String("format", string(format)),
			zap.String("path", path),
		)
	}

	if err := sink.Finish(ctx, index); err != nil {
		return domain.ExportIndex{}, fmt.Errorf("finish %s export: %w", format, err)
	}

	return index, nil
}
