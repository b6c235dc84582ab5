// Package dataset loads the LHC parameter sample and the GP response vector
// and aligns them into a clean training set.
//
// The raw sample can hold a million rows; only the first N are ever read.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"

	"gpgam/adapters/datfile"
	"gpgam/domain/core"
	"gpgam/domain/params"

	"gonum.org/v1/gonum/mat"
)

// LoadSample returns the first rows rows of the raw LHC sample at path,
// restricted to the modelled parameter columns, as a [rows x params.Count]
// matrix. At least one row is always read so an empty or narrow file is
// reported even when rows is zero; the matrix is nil in that case.
func LoadSample(path string, rows int) (*mat.Dense, error) {
	if rows < 0 {
		return nil, fmt.Errorf("requested %d sample rows", rows)
	}

	sc, err := datfile.OpenScanner(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.NewNotFoundError(core.ErrSampleNotFound, path)
		}
		return nil, fmt.Errorf("failed to open LHC sample %s: %w", path, err)
	}
	defer sc.Close()

	need := rows
	if need == 0 {
		need = 1
	}

	data := make([]float64, rows*params.Count)
	var raw []float64
	read := 0
	for read < need && sc.Next() {
		fields := sc.Fields()
		if len(fields) < params.RawWidth {
			return nil, core.NewShapeError(path, fmt.Sprintf("LHC must be [n,>=%d]; line %d has %d columns",
				params.RawWidth, sc.Line(), len(fields)))
		}
		if cap(raw) < len(fields) {
			raw = make([]float64, len(fields))
		}
		raw = raw[:len(fields)]
		if err := datfile.ParseFloats(raw, fields); err != nil {
			return nil, core.NewShapeError(path, fmt.Sprintf("line %d: %v", sc.Line(), err))
		}
		if read < rows {
			params.Select(data[read*params.Count:(read+1)*params.Count], raw)
		}
		read++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if read == 0 {
		return nil, core.NewShapeError(path, "LHC sample is empty")
	}
	if read < need {
		return nil, core.NewShapeError(path, fmt.Sprintf("LHC has only %d rows; need %d", read, rows))
	}
	if rows == 0 {
		return nil, nil
	}
	return mat.NewDense(rows, params.Count, data), nil
}
