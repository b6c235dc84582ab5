package ports

import (
	"context"

	"gpgam/domain/core"
	"gpgam/domain/grid"
	"gpgam/domain/run"
)

// RunLedgerWriter records completed runs. Records are append-only.
type RunLedgerWriter interface {
	SaveRun(ctx context.Context, record *run.Record) error
}

// RunLedgerReader provides read-only access to recorded runs
type RunLedgerReader interface {
	GetRun(ctx context.Context, runID core.RunID) (*run.Record, error)
	ListRuns(ctx context.Context, filters RunFilters) ([]*run.Record, error)
}

// RunFilters for querying recorded runs
type RunFilters struct {
	Point *grid.Point
	Month string
	Limit int
}

// RunLedger combines read and write access
type RunLedger interface {
	RunLedgerWriter
	RunLedgerReader
	Close() error
}
