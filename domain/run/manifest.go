package run

import (
	"gpgam/domain/core"
	"gpgam/domain/grid"
)

// Record is the ledger entry for one completed sensitivity run
type Record struct {
	RunID        core.RunID     `json:"run_id"`
	Point        grid.Point     `json:"point"`
	Month        string         `json:"month"`
	SampleLabel  int            `json:"sample_label"` // N carried in the output file names
	RowsUsed     int            `json:"rows_used"`    // rows surviving cleaning
	ResponsePath string         `json:"response_path"`
	SamplePath   string         `json:"sample_path"`
	VariancePath string         `json:"variance_path"`
	SignPath     string         `json:"sign_path"`
	VarianceHash core.Hash      `json:"variance_hash"`
	SignHash     core.Hash      `json:"sign_hash"`
	Fingerprint  Fingerprint    `json:"fingerprint"`
	CreatedAt    core.Timestamp `json:"created_at"`
}

// NewRecord creates a run record for written outputs
func NewRecord(
	fingerprint Fingerprint,
	sampleLabel int,
	responsePath string,
	variancePath string,
	signPath string,
	varianceHash core.Hash,
	signHash core.Hash,
) *Record {
	return &Record{
		RunID:        core.NewRunID(),
		Point:        fingerprint.Point,
		Month:        fingerprint.Month,
		SampleLabel:  sampleLabel,
		RowsUsed:     fingerprint.RowsUsed,
		ResponsePath: responsePath,
		SamplePath:   fingerprint.SamplePath,
		VariancePath: variancePath,
		SignPath:     signPath,
		VarianceHash: varianceHash,
		SignHash:     signHash,
		Fingerprint:  fingerprint,
		CreatedAt:    core.Now(),
	}
}

// Validate checks if the record is complete
func (r *Record) Validate() error {
	if core.ID(r.RunID).IsEmpty() {
		return core.NewValidationError("run_record", "run_id cannot be empty")
	}
	if r.Month == "" {
		return core.NewValidationError("run_record", "month cannot be empty")
	}
	if r.SampleLabel <= 0 || r.RowsUsed <= 0 {
		return core.NewValidationError("run_record", "sample label and rows used must be positive")
	}
	if r.VariancePath == "" || r.SignPath == "" {
		return core.NewValidationError("run_record", "output paths cannot be empty")
	}
	if r.VarianceHash.IsEmpty() || r.SignHash.IsEmpty() {
		return core.NewValidationError("run_record", "output checksums cannot be empty")
	}
	if r.Fingerprint.Fingerprint.IsEmpty() {
		return core.NewValidationError("run_record", "fingerprint cannot be empty")
	}
	return nil
}
