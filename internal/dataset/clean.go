package dataset

import (
	"fmt"
	"math"

	"gpgam/domain/core"

	"gonum.org/v1/gonum/mat"
)

// Mask marks the rows kept for fitting
type Mask []bool

// Count returns the number of kept rows
func (m Mask) Count() int {
	n := 0
	for _, keep := range m {
		if keep {
			n++
		}
	}
	return n
}

// FiniteRows marks rows where y and every column of X are finite. It fails
// with core.ErrEmptyDataset when no row survives. X may be nil only when y
// is empty.
func FiniteRows(X mat.Matrix, y []float64) (Mask, error) {
	if len(y) == 0 {
		return nil, fmt.Errorf("%w (response vector is empty)", core.ErrEmptyDataset)
	}
	if X == nil {
		return nil, fmt.Errorf("parameter matrix missing for %d responses", len(y))
	}
	r, c := X.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("%w: %d parameter rows for %d responses", core.ErrShape, r, len(y))
	}

	mask := make(Mask, r)
	kept := 0
	for i := 0; i < r; i++ {
		keep := isFinite(y[i])
		for j := 0; keep && j < c; j++ {
			keep = isFinite(X.At(i, j))
		}
		mask[i] = keep
		if keep {
			kept++
		}
	}
	if kept == 0 {
		return nil, core.ErrEmptyDataset
	}
	return mask, nil
}

// Apply compacts X and y to the kept rows
func Apply(X mat.Matrix, y []float64, mask Mask) (*mat.Dense, []float64) {
	_, c := X.Dims()
	n := mask.Count()
	Xn := mat.NewDense(n, c, nil)
	yn := make([]float64, 0, n)
	k := 0
	for i, keep := range mask {
		if !keep {
			continue
		}
		for j := 0; j < c; j++ {
			Xn.Set(k, j, X.At(i, j))
		}
		yn = append(yn, y[i])
		k++
	}
	return Xn, yn
}

// Clean combines FiniteRows and Apply
func Clean(X mat.Matrix, y []float64) (*mat.Dense, []float64, error) {
	mask, err := FiniteRows(X, y)
	if err != nil {
		return nil, nil, err
	}
	Xn, yn := Apply(X, y, mask)
	return Xn, yn, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
