package app

import (
	"context"
	"fmt"
	"io"

	"gpgam/domain/core"
	"gpgam/domain/run"
	"gpgam/internal/errors"
	"gpgam/ports"
)

// RunHistoryService reads recorded sensitivity runs back from the ledger
type RunHistoryService struct {
	ledger ports.RunLedgerReader
	out    io.Writer
}

// NewRunHistoryService creates a ledger reader printing to out
func NewRunHistoryService(ledger ports.RunLedgerReader, out io.Writer) *RunHistoryService {
	if out == nil {
		out = io.Discard
	}
	return &RunHistoryService{ledger: ledger, out: out}
}

// List prints the runs matching filters, newest first
func (s *RunHistoryService) List(ctx context.Context, filters ports.RunFilters) ([]*run.Record, error) {
	if filters.Limit < 0 {
		return nil, errors.InvalidInput("limit must be non-negative")
	}
	records, err := s.ledger.ListRuns(ctx, filters)
	if err != nil {
		return nil, errors.LedgerError("failed to list runs", err)
	}

	fmt.Fprintf(s.out, "%-36s %8s %10s %-5s %7s %7s  %s\n", "run_id", "lat", "lon", "month", "label", "rows", "created_utc")
	for _, r := range records {
		fmt.Fprintf(s.out, "%-36s %8.3f %10.4f %-5s %7d %7d  %s\n",
			r.RunID, r.Point.Lat, r.Point.Lon, r.Month, r.SampleLabel, r.RowsUsed, r.CreatedAt.ISO())
	}
	fmt.Fprintf(s.out, "%d run(s)\n", len(records))
	return records, nil
}

// Show prints one run with its output paths and checksums
func (s *RunHistoryService) Show(ctx context.Context, id string) (*run.Record, error) {
	runID, err := core.ParseRunID(id)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	r, err := s.ledger.GetRun(ctx, runID)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, err
		}
		return nil, errors.LedgerError("failed to read run "+id, err)
	}

	fmt.Fprintf(s.out, "run:       %s\n", r.RunID)
	fmt.Fprintf(s.out, "point:     lat=%s lon=%s month=%s\n", r.Point.LatToken(), r.Point.LonToken(4), r.Month)
	fmt.Fprintf(s.out, "samples:   label=%d rows=%d (%s)\n", r.SampleLabel, r.RowsUsed, r.SamplePath)
	fmt.Fprintf(s.out, "response:  %s\n", r.ResponsePath)
	fmt.Fprintf(s.out, "variances: %s (sha256=%s)\n", r.VariancePath, r.VarianceHash)
	fmt.Fprintf(s.out, "signs:     %s (sha256=%s)\n", r.SignPath, r.SignHash)
	fmt.Fprintf(s.out, "created:   %s\n", r.CreatedAt.ISO())
	return r, nil
}
