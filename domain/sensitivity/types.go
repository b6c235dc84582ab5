package sensitivity

import (
	"fmt"
	"math"

	"gpgam/domain/core"
	"gpgam/domain/params"
)

// Direction is the sign of a parameter's partial-dependence trend
type Direction int

const (
	Decreasing Direction = -1
	Flat       Direction = 0
	Increasing Direction = 1
)

// DirectionOf maps a slope to its sign; an exact zero maps to Flat
func DirectionOf(slope float64) Direction {
	switch {
	case slope > 0:
		return Increasing
	case slope < 0:
		return Decreasing
	default:
		return Flat
	}
}

// Record holds per-parameter variance importance and gradient sign, indexed
// in params.SubsetIndex order.
type Record struct {
	Importance []float64   `json:"importance"`
	Sign       []Direction `json:"sign"`
}

// NewRecord allocates a zeroed record for n parameters
func NewRecord(n int) Record {
	return Record{
		Importance: make([]float64, n),
		Sign:       make([]Direction, n),
	}
}

// Len returns the number of parameters covered
func (r Record) Len() int {
	return len(r.Importance)
}

// Validate checks the record covers exactly the modelled parameters and that
// every importance is a finite non-negative number.
func (r Record) Validate() error {
	if len(r.Importance) != params.Count || len(r.Sign) != params.Count {
		return fmt.Errorf("%w: importance=%d sign=%d, want %d",
			core.ErrRecordLength, len(r.Importance), len(r.Sign), params.Count)
	}
	for i, v := range r.Importance {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return core.NewValidationError("importance", fmt.Sprintf("parameter %d has value %v", i, v))
		}
	}
	for i, s := range r.Sign {
		if s < Decreasing || s > Increasing {
			return core.NewValidationError("sign", fmt.Sprintf("parameter %d has value %d", i, s))
		}
	}
	return nil
}

// Ranked pairs a parameter name with its importance
type Ranked struct {
	Name       string
	Importance float64
	Sign       Direction
}

// Named attaches subset parameter names to the record entries
func (r Record) Named() []Ranked {
	names := params.SubsetNames()
	out := make([]Ranked, 0, r.Len())
	for i := 0; i < r.Len() && i < len(names); i++ {
		out = append(out, Ranked{Name: names[i], Importance: r.Importance[i], Sign: r.Sign[i]})
	}
	return out
}
