// Package sqlite archives exports into a SQLite database so that successive
// runs can be compared.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/bnema/internode-usage-cli/internal/ports"
	"github.com/google/uuid"

	// sqlite driver
	_ "modernc.org/sqlite"
)

const DBFile = "usage.db"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS export_runs (
		id TEXT PRIMARY KEY,
		generated TEXT NOT NULL,
		finished TEXT,
		service_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS service_metadata (
		run_id TEXT NOT NULL REFERENCES export_runs(id),
		service_id INTEGER NOT NULL,
		key TEXT NOT NULL,
		value TEXT,
		PRIMARY KEY (run_id, service_id, key)
	)`,
	`CREATE TABLE IF NOT EXISTS history (
		run_id TEXT NOT NULL REFERENCES export_runs(id),
		service_id INTEGER NOT NULL,
		day TEXT NOT NULL,
		position INTEGER NOT NULL,
		total INTEGER,
		metered_up INTEGER,
		metered_down INTEGER,
		unmetered_up INTEGER,
		unmetered_down INTEGER,
		PRIMARY KEY (run_id, service_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS usage_snapshots (
		run_id TEXT NOT NULL REFERENCES export_runs(id),
		service_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		plan_interval TEXT NOT NULL,
		quota INTEGER NOT NULL,
		rollover TEXT NOT NULL,
		unit TEXT NOT NULL,
		usage INTEGER NOT NULL,
		PRIMARY KEY (run_id, service_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_service_day ON history(service_id, day)`,
}

// Sink writes every export run into usage.db. Rows of one run share a
// random run id.
type Sink struct {
	db    *sql.DB
	path  string
	runID string
}

var _ ports.ExportSink = (*Sink)(nil)

// New opens usage.db below dir; it matches ports.ExportSinkFactory.
func New(dir string) (ports.ExportSink, error) {
	return Open(filepath.Join(dir, DBFile))
}

func Open(path string) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", domain.ErrIO, err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: connect to database: %w", domain.ErrIO, err)
	}

	for _, pragma := range []string{"PRAGMA busy_timeout=5000", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: execute %s: %w", domain.ErrIO, pragma, err)
		}
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: create schema: %w", domain.ErrIO, err)
		}
	}

	return &Sink{db: db, path: path, runID: uuid.NewString()}, nil
}

// Path returns the database file path.
func (s *Sink) Path() string {
	return s.path
}

func (s *Sink) RunID() string {
	return s.runID
}

func (s *Sink) Facets() domain.Facets {
	return domain.AllFacets
}

func (s *Sink) WriteService(ctx context.Context, bundle domain.ExportBundle) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: begin transaction: %w", domain.ErrIO, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.beginRun(ctx, tx, bundle.Generated); err != nil {
		return "", err
	}

	serviceID := int64(bundle.ServiceID)
	if err := insertMetadata(ctx, tx, s.runID, serviceID, bundle.Service); err != nil {
		return "", fmt.Errorf("%w: insert metadata of service %s: %w", domain.ErrIO, bundle.ServiceID, err)
	}
	if err := insertHistory(ctx, tx, s.runID, serviceID, bundle.History); err != nil {
		return "", fmt.Errorf("%w: insert history of service %s: %w", domain.ErrIO, bundle.ServiceID, err)
	}
	if bundle.Usage != nil {
		if err := insertUsage(ctx, tx, s.runID, serviceID, *bundle.Usage); err != nil {
			return "", fmt.Errorf("%w: insert usage of service %s: %w", domain.ErrIO, bundle.ServiceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: commit service %s: %w", domain.ErrIO, bundle.ServiceID, err)
	}

	return DBFile, nil
}

// Finish records the number of services written and when the run ended.
func (s *Sink) Finish(ctx context.Context, index domain.ExportIndex) error {
	if err := s.beginRun(ctx, s.db, index.Generated); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE export_runs SET finished = ?, service_count = ? WHERE id = ?`,
		domain.FormatGenerated(index.Generated), len(index.Services), s.runID,
	)
	if err != nil {
		return fmt.Errorf("%w: finish export run: %w", domain.ErrIO, err)
	}

	return nil
}

func (s *Sink) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Sink) beginRun(ctx context.Context, db execer, generated time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO export_runs (id, generated) VALUES (?, ?)`,
		s.runID, domain.FormatGenerated(generated),
	)
	if err != nil {
		return fmt.Errorf("%w: record export run: %w", domain.ErrIO, err)
	}

	return nil
}

func insertMetadata(ctx context.Context, tx *sql.Tx, runID string, serviceID int64, meta domain.ServiceMetadata) error {
	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var value any
		if raw := meta[key]; raw != nil {
			value = fmt.Sprint(raw)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO service_metadata (run_id, service_id, key, value) VALUES (?, ?, ?, ?)`,
			runID, serviceID, key, value,
		); err != nil {
			return err
		}
	}

	return nil
}

func insertHistory(ctx context.Context, tx *sql.Tx, runID string, serviceID int64, history domain.History) error {
	for position, day := range history {
		var meteredUp, meteredDown, unmeteredUp, unmeteredDown *int64
		if day.Metered != nil {
			meteredUp, meteredDown = day.Metered.Up, day.Metered.Down
		}
		if day.Unmetered != nil {
			unmeteredUp, unmeteredDown = day.Unmetered.Up, day.Unmetered.Down
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO history (run_id, service_id, day, position, total, metered_up, metered_down, unmetered_up, unmetered_down)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, serviceID, day.Date, position,
			nullable(day.Total), nullable(meteredUp), nullable(meteredDown), nullable(unmeteredUp), nullable(unmeteredDown),
		); err != nil {
			return err
		}
	}

	return nil
}

func insertUsage(ctx context.Context, tx *sql.Tx, runID string, serviceID int64, usage domain.UsageSnapshot) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO usage_snapshots (run_id, service_id, name, plan_interval, quota, rollover, unit, usage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, serviceID, usage.Name, usage.PlanInterval, usage.Quota, usage.Rollover, usage.Unit, usage.Usage,
	)
	return err
}

// nullable maps an unreported count to SQL NULL.
func nullable(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
