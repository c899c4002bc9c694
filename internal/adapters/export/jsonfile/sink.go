// Package jsonfile writes an export as one JSON file per service plus an
// account.json index.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/bnema/internode-usage-cli/internal/ports"
)

const (
	IndexFile = "account.json"

	fileMode = 0o644
	indent   = "    "
)

type Sink struct {
	dir string
}

var _ ports.ExportSink = (*Sink)(nil)

// New matches ports.ExportSinkFactory.
func New(dir string) (ports.ExportSink, error) {
	return &Sink{dir: dir}, nil
}

func (s *Sink) Facets() domain.Facets {
	return domain.AllFacets
}

func (s *Sink) WriteService(ctx context.Context, bundle domain.ExportBundle) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := bundle.ServiceID.String() + ".json"
	if err := writeJSON(filepath.Join(s.dir, name), bundle); err != nil {
		return "", err
	}

	return name, nil
}

func (s *Sink) Finish(ctx context.Context, index domain.ExportIndex) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return writeJSON(filepath.Join(s.dir, IndexFile), index)
}

func (s *Sink) Close() error {
	return nil
}

// writeJSON encodes v with sorted keys and four-space indentation.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indent)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, buf.Bytes(), fileMode); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrIO, path, err)
	}

	return nil
}
