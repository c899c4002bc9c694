// Package csvfile writes the daily usage history of each service as CSV.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/bnema/internode-usage-cli/internal/ports"
)

var Header = []string{"Date", "Unmetered Up", "Unmetered Down", "Metered Up", "Metered Down", "Total"}

type Sink struct {
	dir string
}

var _ ports.ExportSink = (*Sink)(nil)

func New(dir string) (ports.ExportSink, error) {
	return &Sink{dir: dir}, nil
}

// Facets only asks for history; metadata and usage have no CSV form.
func (s *Sink) Facets() domain.Facets {
	return domain.Facets{History: true}
}

func (s *Sink) WriteService(ctx context.Context, bundle domain.ExportBundle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := bundle.ServiceID.String() + ".csv"
	path := filepath.Join(s.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %w", domain.ErrIO, path, err)
	}

	if err := writeHistory(file, bundle.History); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("%w: write %s: %w", domain.ErrIO, path, err)
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", domain.ErrIO, path, err)
	}

	return name, nil
}

// Finish writes nothing; CSV exports have no index file.
func (s *Sink) Finish(context.Context, domain.ExportIndex) error {
	return nil
}

func (s *Sink) Close() error {
	return nil
}

// Row renders one day with unreported values as 0.
func Row(day domain.HistoryDay) []string {
	return []string{
		day.Date,
		strconv.FormatInt(day.Unmetered.UpOrZero(), 10),
		strconv.FormatInt(day.Unmetered.DownOrZero(), 10),
		strconv.FormatInt(day.Metered.UpOrZero(), 10),
		strconv.FormatInt(day.Metered.DownOrZero(), 10),
		strconv.FormatInt(day.TotalOrZero(), 10),
	}
}

func writeHistory(file *os.File, history domain.History) error {
	w := csv.NewWriter(file)
	w.UseCRLF = true

	if err := w.Write(Header); err != nil {
		return err
	}
	for _, day := range history {
		if err := w.Write(Row(day)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
