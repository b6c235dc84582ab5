// Package output persists sensitivity records as the variance and
// gradient-sign vector files consumed by downstream plotting.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"gpgam/adapters/datfile"
	"gpgam/domain/grid"
	sens "gpgam/domain/sensitivity"
)

// VariantBaseline is the only output variant the core run produces
const VariantBaseline = "baseline"

// Paths are the two files written for one run
type Paths struct {
	Dir      string
	Variance string
	Sign     string
}

// Writer places result files under <gam-out>/<variant>/lat<lat>/
type Writer struct {
	root    string
	variant string
}

// NewWriter creates a writer rooted at the GAM output directory
func NewWriter(gamOutDir string) *Writer {
	return &Writer{root: gamOutDir, variant: VariantBaseline}
}

// Locate returns the paths a run for (p, month, label) writes to
func (w *Writer) Locate(p grid.Point, month string, label int) Paths {
	dir := filepath.Join(w.root, w.variant, p.LatDir())
	return Paths{
		Dir:      dir,
		Variance: filepath.Join(dir, grid.VarianceFileName(month, label, p)),
		Sign:     filepath.Join(dir, grid.SignFileName(month, label, p)),
	}
}

// Write validates the record and writes both vectors. Nothing is written
// when validation fails; each file is replaced atomically.
func (w *Writer) Write(p grid.Point, month string, label int, record sens.Record) (Paths, error) {
	if err := record.Validate(); err != nil {
		return Paths{}, err
	}
	if label <= 0 {
		return Paths{}, fmt.Errorf("invalid sample label %d", label)
	}

	paths := w.Locate(p, month, label)
	if err := os.MkdirAll(paths.Dir, 0755); err != nil {
		return Paths{}, fmt.Errorf("failed to create output directory %s: %w", paths.Dir, err)
	}

	if err := datfile.WriteFloats(paths.Variance, record.Importance); err != nil {
		return Paths{}, err
	}

	signs := make([]int, len(record.Sign))
	for i, s := range record.Sign {
		signs[i] = int(s)
	}
	if err := datfile.WriteInts(paths.Sign, signs); err != nil {
		return Paths{}, err
	}
	return paths, nil
}
