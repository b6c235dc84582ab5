// Package sensitivity estimates per-parameter importance and direction from
// a fitted response surface by one-at-a-time partial dependence: every other
// parameter is held at its median while one parameter sweeps its observed
// values.
package sensitivity

import (
	"fmt"
	"math"

	"gpgam/domain/core"
	sens "gpgam/domain/sensitivity"
	"gpgam/ports"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// MinStd is the population standard deviation below which a parameter
	// is treated as constant and skipped
	MinStd = 1e-12
	// MinSlopeVariance guards the slope denominator
	MinSlopeVariance = 1e-15
)

// Estimate computes the sensitivity record for the cleaned design X against
// the surface fitted on it. X must be finite; its column order defines the
// record order.
func Estimate(surface ports.Surface, X mat.Matrix) (sens.Record, error) {
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return sens.Record{}, fmt.Errorf("%w: cannot estimate sensitivities from %dx%d design", core.ErrEmptyDataset, n, d)
	}

	columns := make([][]float64, d)
	medians := make([]float64, d)
	for j := 0; j < d; j++ {
		columns[j] = mat.Col(nil, j, X)
		m, err := stats.Median(stats.Float64Data(columns[j]))
		if err != nil {
			return sens.Record{}, fmt.Errorf("median of column %d: %w", j, err)
		}
		medians[j] = m
	}

	// Every row starts at the median vector; one column is swapped in at a time
	synthetic := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		synthetic.SetRow(i, medians)
	}

	record := sens.NewRecord(d)
	for j := 0; j < d; j++ {
		xcol := columns[j]
		sd, err := stats.StandardDeviationPopulation(stats.Float64Data(xcol))
		if err != nil || math.IsNaN(sd) || sd < MinStd {
			continue
		}

		synthetic.SetCol(j, xcol)
		pred, err := surface.Predict(synthetic)
		fillColumn(synthetic, j, medians[j])
		if err != nil {
			return sens.Record{}, fmt.Errorf("predict sweep for parameter %d: %w", j, err)
		}

		importance, slope := sweepStats(xcol, pred)
		if !isFinite(importance) {
			return sens.Record{}, core.NewFitError(fmt.Sprintf("parameter %d sweep variance is %v", j, importance))
		}
		record.Importance[j] = importance
		record.Sign[j] = sens.DirectionOf(slope)
	}
	return record, nil
}

// sweepStats returns the sample variance of the predictions and the
// least-squares slope of predictions on x over the jointly finite pairs.
// Fewer than two pairs give zeros. An overflowing variance is returned as is.
func sweepStats(x, pred []float64) (importance, slope float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(x))
	for i := range x {
		if isFinite(x[i]) && i < len(pred) && isFinite(pred[i]) {
			xs = append(xs, x[i])
			ys = append(ys, pred[i])
		}
	}
	if len(xs) < 2 {
		return 0, 0
	}

	importance = stat.Variance(ys, nil)
	if vx := stat.Variance(xs, nil); vx >= MinSlopeVariance {
		slope = stat.Covariance(xs, ys, nil) / vx
	}
	if importance < 0 {
		importance = 0
	}
	return importance, slope
}

func fillColumn(m *mat.Dense, j int, v float64) {
	n, _ := m.Dims()
	for i := 0; i < n; i++ {
		m.Set(i, j, v)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
