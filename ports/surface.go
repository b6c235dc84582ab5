package ports

import (
	"gonum.org/v1/gonum/mat"
)

// Surface is a trained response surface. Predict must be a pure function of
// its input once fitting has finished.
type Surface interface {
	// Predict evaluates the surface on every row of X, which must have the
	// training column count
	Predict(X mat.Matrix) ([]float64, error)
}

// SurfaceFitter trains a Surface from a design matrix and response vector
type SurfaceFitter interface {
	Fit(X mat.Matrix, y []float64) (Surface, error)
}
