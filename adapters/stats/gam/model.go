// Package gam fits additive models with one penalised cubic regression
// spline per input column (P-splines with an identity link).
//
// The objective is ||y - Bβ||² + λ Σ_j ||D₂β_j||² where B holds an intercept
// column and a uniform cubic B-spline basis per feature, and D₂ is the
// second-order difference operator. A √ε ridge on the diagonal keeps the
// normal matrix positive definite despite the intercept/partition-of-unity
// collinearity, which does not affect predictions.
package gam

import (
	"fmt"
	"math"

	"gpgam/domain/core"
	"gpgam/ports"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ridge matches the sqrt(machine epsilon) jitter of common GAM solvers
var ridge = math.Sqrt(2.220446049250313e-16)

// Config controls the per-term smooth
type Config struct {
	Splines int     // basis functions per feature, >= 4
	Lambda  float64 // second-difference penalty weight per term
}

// DefaultConfig is 20 cubic splines per term with λ = 0.6
func DefaultConfig() Config {
	return Config{Splines: 20, Lambda: 0.6}
}

// Fitter trains Models
type Fitter struct {
	cfg Config
}

// NewFitter creates a fitter; invalid settings fall back to the defaults
func NewFitter(cfg Config) *Fitter {
	def := DefaultConfig()
	if cfg.Splines < 4 {
		cfg.Splines = def.Splines
	}
	if cfg.Lambda < 0 || math.IsNaN(cfg.Lambda) {
		cfg.Lambda = def.Lambda
	}
	return &Fitter{cfg: cfg}
}

// term is one feature's smooth; coef is nil for a constant column
type term struct {
	basis  bspline
	offset int
	coef   []float64
}

// Model is a fitted additive surface
type Model struct {
	intercept float64
	terms     []term
}

var _ ports.Surface = (*Model)(nil)

// Fit solves the penalised least-squares problem for X [n x d] and y [n]
func (f *Fitter) Fit(X mat.Matrix, y []float64) (ports.Surface, error) {
	return f.FitModel(X, y)
}

// FitModel is Fit returning the concrete model
func (f *Fitter) FitModel(X mat.Matrix, y []float64) (*Model, error) {
	n, d := X.Dims()
	if n != len(y) {
		return nil, core.NewFitError(fmt.Sprintf("%d rows for %d responses", n, len(y)))
	}
	if n == 0 || d == 0 {
		return nil, core.NewFitError("empty design")
	}

	terms, p := f.layoutTerms(X)

	ata := make([]float64, p*p)
	aty := make([]float64, p)

	idx := make([]int, 0, 1+4*d)
	val := make([]float64, 0, 1+4*d)
	var w [4]float64
	for i := 0; i < n; i++ {
		idx = append(idx[:0], 0)
		val = append(val[:0], 1)
		for j := range terms {
			t := &terms[j]
			if t.coef == nil {
				continue
			}
			k := t.basis.eval(X.At(i, j), &w)
			for a := 0; a < 4; a++ {
				idx = append(idx, t.offset+k+a)
				val = append(val, w[a])
			}
		}

		// idx is increasing, so (a <= b) fills the upper triangle
		for a, ia := range idx {
			va := val[a]
			aty[ia] += va * y[i]
			row := ata[ia*p:]
			for b := a; b < len(idx); b++ {
				row[idx[b]] += va * val[b]
			}
		}
	}

	f.addPenalty(ata, p, terms)
	for i := 0; i < p; i++ {
		ata[i*p+i] += ridge
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(mat.NewSymDense(p, ata)); !ok {
		return nil, core.NewFitError("penalised normal matrix is not positive definite")
	}
	beta := mat.NewVecDense(p, nil)
	if err := chol.SolveVecTo(beta, mat.NewVecDense(p, aty)); err != nil {
		return nil, core.NewFitError(err.Error())
	}

	coefs := beta.RawVector().Data
	if s := floats.Sum(coefs); math.IsNaN(s) || math.IsInf(s, 0) {
		return nil, core.NewFitError("non-finite coefficients")
	}

	m := &Model{intercept: coefs[0], terms: terms}
	for j := range m.terms {
		t := &m.terms[j]
		if t.coef == nil {
			continue
		}
		copy(t.coef, coefs[t.offset:t.offset+t.basis.size()])
	}
	return m, nil
}

// layoutTerms sizes each feature's basis from its observed range and
// assigns coefficient offsets after the intercept
func (f *Fitter) layoutTerms(X mat.Matrix) ([]term, int) {
	n, d := X.Dims()
	terms := make([]term, d)
	p := 1
	for j := 0; j < d; j++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < n; i++ {
			v := X.At(i, j)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		terms[j].basis = newBSpline(lo, hi, f.cfg.Splines)
		if !(hi-lo > 1e-12*math.Max(1, math.Abs(lo))) {
			continue
		}
		terms[j].offset = p
		terms[j].coef = make([]float64, terms[j].basis.size())
		p += terms[j].basis.size()
	}
	return terms, p
}

// addPenalty adds λ D₂ᵀD₂ for every active term to the upper triangle
func (f *Fitter) addPenalty(ata []float64, p int, terms []term) {
	if f.cfg.Lambda == 0 {
		return
	}
	diff := [3]float64{1, -2, 1}
	for _, t := range terms {
		if t.coef == nil {
			continue
		}
		for r := 0; r+2 < t.basis.size(); r++ {
			base := t.offset + r
			for a := 0; a < 3; a++ {
				for b := a; b < 3; b++ {
					ata[(base+a)*p+base+b] += f.cfg.Lambda * diff[a] * diff[b]
				}
			}
		}
	}
}

// Predict evaluates the model on each row of X. NaN inputs give NaN.
func (m *Model) Predict(X mat.Matrix) ([]float64, error) {
	n, d := X.Dims()
	if d != len(m.terms) {
		return nil, fmt.Errorf("model has %d terms, input has %d columns", len(m.terms), d)
	}

	out := make([]float64, n)
	var w [4]float64
	for i := 0; i < n; i++ {
		sum := m.intercept
		for j := range m.terms {
			t := &m.terms[j]
			if t.coef == nil {
				continue
			}
			x := X.At(i, j)
			if math.IsNaN(x) {
				sum = math.NaN()
				break
			}
			k := t.basis.eval(x, &w)
			for a := 0; a < 4; a++ {
				sum += w[a] * t.coef[k+a]
			}
		}
		out[i] = sum
	}
	return out, nil
}

// Terms returns the number of input columns
func (m *Model) Terms() int {
	return len(m.terms)
}

// ConstantTerms lists the columns that were constant during training and
// therefore carry no smooth
func (m *Model) ConstantTerms() []int {
	var out []int
	for j, t := range m.terms {
		if t.coef == nil {
			out = append(out, j)
		}
	}
	return out
}
