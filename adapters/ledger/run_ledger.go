// Package ledger stores run records in SQLite or PostgreSQL through sqlx.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gpgam/domain/core"
	"gpgam/domain/grid"
	"gpgam/domain/run"
	"gpgam/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS gam_runs (
	run_id        TEXT PRIMARY KEY,
	lat           DOUBLE PRECISION NOT NULL,
	lon           DOUBLE PRECISION NOT NULL,
	month         TEXT NOT NULL,
	sample_label  INTEGER NOT NULL,
	rows_used     INTEGER NOT NULL,
	response_path TEXT NOT NULL,
	sample_path   TEXT NOT NULL,
	variance_path TEXT NOT NULL,
	sign_path     TEXT NOT NULL,
	variance_hash TEXT NOT NULL,
	sign_hash     TEXT NOT NULL,
	response_hash TEXT NOT NULL,
	splines       INTEGER NOT NULL,
	lambda        DOUBLE PRECISION NOT NULL,
	fingerprint   TEXT NOT NULL,
	created_at    TEXT NOT NULL
)`

// timeLayout is fixed-width so created_at sorts lexically in both databases
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const pointIndex = `CREATE INDEX IF NOT EXISTS idx_gam_runs_point ON gam_runs (lat, lon, month)`

const selectColumns = `run_id, lat, lon, month, sample_label, rows_used, response_path, sample_path,
	variance_path, sign_path, variance_hash, sign_hash, response_hash, splines, lambda, fingerprint, created_at`

// runRow is the flat table representation of a run.Record
type runRow struct {
	RunID        string  `db:"run_id"`
	Lat          float64 `db:"lat"`
	Lon          float64 `db:"lon"`
	Month        string  `db:"month"`
	SampleLabel  int     `db:"sample_label"`
	RowsUsed     int     `db:"rows_used"`
	ResponsePath string  `db:"response_path"`
	SamplePath   string  `db:"sample_path"`
	VariancePath string  `db:"variance_path"`
	SignPath     string  `db:"sign_path"`
	VarianceHash string  `db:"variance_hash"`
	SignHash     string  `db:"sign_hash"`
	ResponseHash string  `db:"response_hash"`
	Splines      int     `db:"splines"`
	Lambda       float64 `db:"lambda"`
	Fingerprint  string  `db:"fingerprint"`
	CreatedAt    string  `db:"created_at"`
}

// RunLedgerImpl implements ports.RunLedger over a sqlx handle
type RunLedgerImpl struct {
	db *sqlx.DB
}

// NewRunLedger wraps an open database; the schema must already exist
func NewRunLedger(db *sqlx.DB) ports.RunLedger {
	return &RunLedgerImpl{db: db}
}

// Open connects with the named driver ("sqlite3" or "postgres") and creates
// the runs table when missing
func Open(ctx context.Context, driver, dsn string) (*RunLedgerImpl, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s ledger: %w", driver, err)
	}
	l := &RunLedgerImpl{db: db}
	if err := l.Bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Bootstrap creates the table and index if they do not exist
func (r *RunLedgerImpl) Bootstrap(ctx context.Context) error {
	for _, stmt := range []string{schema, pointIndex} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create ledger schema: %w", err)
		}
	}
	return nil
}

// SaveRun inserts a validated run record
func (r *RunLedgerImpl) SaveRun(ctx context.Context, record *run.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO gam_runs (`+selectColumns+`)
		VALUES (:run_id, :lat, :lon, :month, :sample_label, :rows_used, :response_path, :sample_path,
			:variance_path, :sign_path, :variance_hash, :sign_hash, :response_hash, :splines, :lambda,
			:fingerprint, :created_at)
	`, toRow(record))
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", record.RunID, err)
	}
	return nil
}

// GetRun loads one run by id
func (r *RunLedgerImpl) GetRun(ctx context.Context, runID core.RunID) (*run.Record, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+selectColumns+` FROM gam_runs WHERE run_id = ?`), runID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", core.ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return fromRow(row)
}

// ListRuns returns runs newest first
func (r *RunLedgerImpl) ListRuns(ctx context.Context, filters ports.RunFilters) ([]*run.Record, error) {
	var where []string
	var args []interface{}
	if filters.Point != nil {
		where = append(where, "lat = ? AND lon = ?")
		args = append(args, filters.Point.Lat, filters.Point.Lon)
	}
	if filters.Month != "" {
		where = append(where, "month = ?")
		args = append(args, filters.Month)
	}

	query := `SELECT ` + selectColumns + ` FROM gam_runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, run_id DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	records := make([]*run.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close releases the database handle
func (r *RunLedgerImpl) Close() error {
	return r.db.Close()
}

func toRow(rec *run.Record) runRow {
	return runRow{
		RunID:        rec.RunID.String(),
		Lat:          rec.Point.Lat,
		Lon:          rec.Point.Lon,
		Month:        rec.Month,
		SampleLabel:  rec.SampleLabel,
		RowsUsed:     rec.RowsUsed,
		ResponsePath: rec.ResponsePath,
		SamplePath:   rec.SamplePath,
		VariancePath: rec.VariancePath,
		SignPath:     rec.SignPath,
		VarianceHash: rec.VarianceHash.String(),
		SignHash:     rec.SignHash.String(),
		ResponseHash: rec.Fingerprint.ResponseHash.String(),
		Splines:      rec.Fingerprint.Splines,
		Lambda:       rec.Fingerprint.Lambda,
		Fingerprint:  rec.Fingerprint.Fingerprint.String(),
		CreatedAt:    rec.CreatedAt.Time().Format(timeLayout),
	}
}

func fromRow(row runRow) (*run.Record, error) {
	runID, err := core.ParseRunID(row.RunID)
	if err != nil {
		return nil, fmt.Errorf("corrupt run id %q: %w", row.RunID, err)
	}
	created, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at %q for run %s: %w", row.CreatedAt, row.RunID, err)
	}

	point := grid.Point{Lat: row.Lat, Lon: row.Lon}
	return &run.Record{
		RunID:        runID,
		Point:        point,
		Month:        row.Month,
		SampleLabel:  row.SampleLabel,
		RowsUsed:     row.RowsUsed,
		ResponsePath: row.ResponsePath,
		SamplePath:   row.SamplePath,
		VariancePath: row.VariancePath,
		SignPath:     row.SignPath,
		VarianceHash: core.Hash(row.VarianceHash),
		SignHash:     core.Hash(row.SignHash),
		Fingerprint: run.Fingerprint{
			Point:        point,
			Month:        row.Month,
			ResponseHash: core.Hash(row.ResponseHash),
			SamplePath:   row.SamplePath,
			RowsUsed:     row.RowsUsed,
			Splines:      row.Splines,
			Lambda:       row.Lambda,
			Fingerprint:  core.Hash(row.Fingerprint),
		},
		CreatedAt: core.NewTimestamp(created),
	}, nil
}
