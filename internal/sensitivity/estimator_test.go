package sensitivity

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gpgam/adapters/stats/gam"
	"gpgam/domain/core"
	sens "gpgam/domain/sensitivity"
	"gpgam/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// linearSurface predicts Σ w_j x_j
type linearSurface struct {
	weights []float64
}

func (s linearSurface) Predict(X mat.Matrix) ([]float64, error) {
	n, d := X.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			out[i] += s.weights[j] * X.At(i, j)
		}
	}
	return out, nil
}

// nanSurface predicts NaN everywhere
type nanSurface struct{}

func (nanSurface) Predict(X mat.Matrix) ([]float64, error) {
	n, _ := X.Dims()
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out, nil
}

type failingSurface struct{}

func (failingSurface) Predict(mat.Matrix) ([]float64, error) {
	return nil, errors.New("boom")
}

var _ ports.Surface = linearSurface{}

func design(rng *rand.Rand, n, d int) *mat.Dense {
	X := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			X.Set(i, j, rng.Float64())
		}
	}
	return X
}

func TestEstimateLinearSurface(t *testing.T) {
	X := design(rand.New(rand.NewSource(1)), 200, 3)
	surface := linearSurface{weights: []float64{2, -3, 0}}

	record, err := Estimate(surface, X)
	require.NoError(t, err)
	require.Equal(t, 3, record.Len())

	assert.Equal(t, sens.Increasing, record.Sign[0])
	assert.Equal(t, sens.Decreasing, record.Sign[1])

	// var(c * x) = c² var(x)
	for j, w := range surface.weights {
		col := mat.Col(nil, j, X)
		var mean, ss float64
		for _, v := range col {
			mean += v
		}
		mean /= float64(len(col))
		for _, v := range col {
			ss += (v - mean) * (v - mean)
		}
		assert.InDelta(t, w*w*ss/float64(len(col)-1), record.Importance[j], 1e-9)
	}
}

func TestEstimateZeroVarianceColumn(t *testing.T) {
	X := design(rand.New(rand.NewSource(2)), 50, 2)
	for i := 0; i < 50; i++ {
		X.Set(i, 1, 0.25)
	}

	record, err := Estimate(linearSurface{weights: []float64{1, 100}}, X)
	require.NoError(t, err)
	assert.Equal(t, 0.0, record.Importance[1])
	assert.Equal(t, sens.Flat, record.Sign[1])
	assert.Greater(t, record.Importance[0], 0.0)
}

func TestEstimateTooFewFinitePredictions(t *testing.T) {
	X := design(rand.New(rand.NewSource(3)), 20, 2)

	record, err := Estimate(nanSurface{}, X)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, record.Importance)
	assert.Equal(t, []sens.Direction{sens.Flat, sens.Flat}, record.Sign)
}

func TestEstimatePropagatesPredictErrors(t *testing.T) {
	X := design(rand.New(rand.NewSource(4)), 10, 1)

	_, err := Estimate(failingSurface{}, X)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestEstimateEmptyDesign(t *testing.T) {
	_, err := Estimate(linearSurface{}, &mat.Dense{})
	require.Error(t, err)
	assert.True(t, core.IsEmptyDatasetError(err))
}

func TestSweepStatsIgnoresNonFinitePairs(t *testing.T) {
	imp, slope := sweepStats([]float64{1, 2, 3, math.NaN()}, []float64{2, 4, math.Inf(1), 8})
	assert.InDelta(t, 2.0, imp, 1e-12)
	assert.InDelta(t, 2.0, slope, 1e-12)

	imp, slope = sweepStats([]float64{1, 1}, []float64{3, 3})
	assert.Equal(t, 0.0, imp)
	assert.Equal(t, 0.0, slope)
}

func TestSweepStatsKeepsOverflow(t *testing.T) {
	imp, slope := sweepStats([]float64{0, 1}, []float64{-1e200, 1e200})
	assert.True(t, math.IsInf(imp, 1))
	assert.Greater(t, slope, 0.0)
}

func TestEstimateRejectsOverflowingVariance(t *testing.T) {
	X := design(rand.New(rand.NewSource(6)), 30, 2)

	_, err := Estimate(linearSurface{weights: []float64{1e200, 1}}, X)
	require.Error(t, err)
	assert.True(t, core.IsFitError(err))
	assert.Contains(t, err.Error(), "parameter 0")
}

// Response c·x_i with every other parameter constant must recover sign(c)
// through the fitted additive model.
func TestEstimateThroughFittedModel(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	n, d := 400, 4
	for _, c := range []float64{3.5, -1.25} {
		for i := 0; i < d; i++ {
			X := mat.NewDense(n, d, nil)
			y := make([]float64, n)
			for r := 0; r < n; r++ {
				for j := 0; j < d; j++ {
					X.Set(r, j, 0.5)
				}
				X.Set(r, i, rng.Float64())
				y[r] = c * X.At(r, i)
			}

			surface, err := gam.NewFitter(gam.DefaultConfig()).Fit(X, y)
			require.NoError(t, err)

			record, err := Estimate(surface, X)
			require.NoError(t, err)
			want := sens.Increasing
			if c < 0 {
				want = sens.Decreasing
			}
			assert.Equal(t, want, record.Sign[i], "c=%v i=%d", c, i)
			for j := 0; j < d; j++ {
				if j != i {
					assert.Equal(t, 0.0, record.Importance[j])
					assert.Equal(t, sens.Flat, record.Sign[j])
				}
			}
		}
	}
}
