package run

import (
	"math"
	"time"

	"gpgam/domain/grid"
)

// Target is one (point, month) a comparison runs for
type Target struct {
	Point grid.Point `json:"point"`
	Month string     `json:"month"`
}

// DefaultTargets are the four demo grid points, January
func DefaultTargets() []Target {
	points := []grid.Point{
		{Lat: 34.375, Lon: -10.3125},
		{Lat: 35.625, Lon: 6.5625},
		{Lat: 36.875, Lon: 10.3125},
		{Lat: 38.125, Lon: 2.8125},
	}
	targets := make([]Target, len(points))
	for i, p := range points {
		targets[i] = Target{Point: p, Month: "jan"}
	}
	return targets
}

// Timing is the wall-clock cost of the baseline and optimised runs for one target
type Timing struct {
	Target
	Baseline  time.Duration `json:"baseline"`
	Optimised time.Duration `json:"optimised"`
}

// Speedup is baseline/optimised, NaN when the optimised time is not positive
func (t Timing) Speedup() float64 {
	return speedup(t.Baseline, t.Optimised)
}

// Totals sums both columns and returns the overall speedup
func Totals(rows []Timing) (baseline, optimised time.Duration, overall float64) {
	for _, r := range rows {
		baseline += r.Baseline
		optimised += r.Optimised
	}
	return baseline, optimised, speedup(baseline, optimised)
}

func speedup(b, o time.Duration) float64 {
	if o <= 0 {
		return math.NaN()
	}
	return b.Seconds() / o.Seconds()
}
