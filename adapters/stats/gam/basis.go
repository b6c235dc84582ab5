package gam

import "math"

// bspline is a cubic B-spline basis on uniform knots spanning [lo, hi].
// With n basis functions the range splits into n-3 equal intervals and at
// most four functions are non-zero at any x.
type bspline struct {
	lo, hi    float64
	h         float64
	intervals int
}

func newBSpline(lo, hi float64, n int) bspline {
	intervals := n - 3
	return bspline{lo: lo, hi: hi, h: (hi - lo) / float64(intervals), intervals: intervals}
}

// size is the number of basis functions
func (b bspline) size() int {
	return b.intervals + 3
}

// eval writes the four possibly non-zero basis values at x into vals and
// returns the index of the first. Outside [lo, hi] each basis function is
// extended linearly from its boundary value and slope.
func (b bspline) eval(x float64, vals *[4]float64) int {
	switch {
	case x < b.lo:
		cubicWeights(0, vals)
		var d [4]float64
		cubicSlopes(0, &d)
		t := (x - b.lo) / b.h
		for a := range vals {
			vals[a] += d[a] * t
		}
		return 0
	case x > b.hi:
		k := b.intervals - 1
		cubicWeights(1, vals)
		var d [4]float64
		cubicSlopes(1, &d)
		t := (x - b.hi) / b.h
		for a := range vals {
			vals[a] += d[a] * t
		}
		return k
	}

	s := (x - b.lo) / b.h
	k := int(math.Floor(s))
	if k >= b.intervals {
		k = b.intervals - 1
	}
	if k < 0 {
		k = 0
	}
	cubicWeights(s-float64(k), vals)
	return k
}

// cubicWeights are the uniform cubic B-spline blending functions at local
// coordinate u in [0, 1]; they sum to one.
func cubicWeights(u float64, w *[4]float64) {
	u2 := u * u
	u3 := u2 * u
	v := 1 - u
	w[0] = v * v * v / 6
	w[1] = (3*u3 - 6*u2 + 4) / 6
	w[2] = (-3*u3 + 3*u2 + 3*u + 1) / 6
	w[3] = u3 / 6
}

// cubicSlopes are d/du of cubicWeights
func cubicSlopes(u float64, d *[4]float64) {
	u2 := u * u
	v := 1 - u
	d[0] = -v * v / 2
	d[1] = (3*u2 - 4*u) / 2
	d[2] = (-3*u2 + 2*u + 1) / 2
	d[3] = u2 / 2
}
