// Package grid names grid cells and the files keyed by them.
package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Variable is the emulated response variable.
const Variable = "H2SO4"

// Point is a model grid cell centre in degrees.
type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// LatToken formats the latitude at the 3-decimal precision used in file names.
func (p Point) LatToken() string {
	return strconv.FormatFloat(p.Lat, 'f', 3, 64)
}

// LonToken formats the longitude at the given number of decimals.
// A negative precision gives the shortest repr, e.g. "-10.3125" or "6.0".
func (p Point) LonToken(prec int) string {
	if prec < 0 {
		return Repr(p.Lon)
	}
	return strconv.FormatFloat(p.Lon, 'f', prec, 64)
}

// LatDir is the per-latitude output folder name, e.g. "lat34.375".
func (p Point) LatDir() string {
	return "lat" + p.LatToken()
}

func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)", p.LatToken(), p.LonToken(4))
}

// Repr formats a float as its shortest round-tripping decimal, always
// carrying a fractional part so integral values read "6.0" rather than "6".
func Repr(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// ResponseFileName is the GP emulator mean-response file for a point, with
// lat/lon tokens given explicitly so discovery can vary their precision.
func ResponseFileName(month, latTok, lonTok string, n int) string {
	return fmt.Sprintf("emulated_mean_values_%s_%s_ilat_%s_ilon_%s_%d_w_o_carb.dat", Variable, month, latTok, lonTok, n)
}

// ResponsePrefix starts every GP mean-response file name.
const ResponsePrefix = "emulated_mean_values_" + Variable + "_"

// VarianceFileName is the GAM variance-importance output for a point.
func VarianceFileName(month string, n int, p Point) string {
	return fmt.Sprintf("GAM_variances_%s_%s_%d_ilat_%s_ilon_%s.dat", Variable, month, n, p.LatToken(), p.LonToken(4))
}

// SignFileName is the GAM gradient-sign output for a point.
func SignFileName(month string, n int, p Point) string {
	return fmt.Sprintf("GAM_gradient_signs_%s_%s_%d_ilat_%s_ilon_%s.dat", Variable, month, n, p.LatToken(), p.LonToken(4))
}

// RawInputFileName is the demo GP input for a point with the given longitude token.
func RawInputFileName(p Point, lonTok string) string {
	return fmt.Sprintf("lat_%s_lon_%s.dat", p.LatToken(), lonTok)
}
