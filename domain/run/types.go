package run

import (
	"crypto/sha256"
	"fmt"

	"gpgam/domain/core"
	"gpgam/domain/grid"
)

// Fingerprint identifies the inputs of a run so repeated runs on identical
// inputs can be recognised in the ledger
type Fingerprint struct {
	Point        grid.Point `json:"point"`
	Month        string     `json:"month"`
	ResponseHash core.Hash  `json:"response_hash"`
	SamplePath   string     `json:"sample_path"`
	RowsUsed     int        `json:"rows_used"`
	Splines      int        `json:"splines"`
	Lambda       float64    `json:"lambda"`
	Fingerprint  core.Hash  `json:"fingerprint"` // Hash of all above
}

// NewFingerprint creates a fingerprint from the run inputs
func NewFingerprint(point grid.Point, month string, responseHash core.Hash, samplePath string,
	rowsUsed, splines int, lambda float64) Fingerprint {

	return Fingerprint{
		Point:        point,
		Month:        month,
		ResponseHash: responseHash,
		SamplePath:   samplePath,
		RowsUsed:     rowsUsed,
		Splines:      splines,
		Lambda:       lambda,
		Fingerprint:  computeFingerprint(point, month, responseHash, samplePath, rowsUsed, splines, lambda),
	}
}

func computeFingerprint(point grid.Point, month string, responseHash core.Hash, samplePath string,
	rowsUsed, splines int, lambda float64) core.Hash {

	data := fmt.Sprintf("lat:%s|lon:%s|month:%s|response:%s|sample:%s|rows:%d|splines:%d|lambda:%g",
		point.LatToken(), point.LonToken(4), month, responseHash, samplePath, rowsUsed, splines, lambda)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
