package qbench

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Range is a closed numeric interval.
type Range struct {
	Lo float64
	Hi float64
}

// Mid returns the midpoint of the range, used as the decode fallback for
// positions that received no counts.
func (r Range) Mid() float64 { return (r.Lo + r.Hi) / 2 }

// PixelRange is the value range every sample vector lives in.
var PixelRange = Range{Lo: 0, Hi: 255}

// Input distributions.
const (
	DistLinear    = "linear"
	DistRandom    = "random"
	DistReversing = "reversing"
)

// Interp maps v from one range into another by strict linear interpolation,
// clamping only at the exact endpoints.
func Interp(v float64, from, to Range) float64 {
	if v <= from.Lo {
		return to.Lo
	}
	if v >= from.Hi {
		return to.Hi
	}
	return to.Lo + (v-from.Lo)*(to.Hi-to.Lo)/(from.Hi-from.Lo)
}

/*
GenerateInput produces a sample vector of n values inside the value range
together with the matching angle vector.

Distributions:
  - linear: n values evenly spaced across the value range.
  - random: n values drawn uniformly from the value range.
  - reversing: the linear sequence reordered boustrophedon, every other
    sqrt(n)-sized row reversed, modelling 2-D raster locality. Requires n
    to be a perfect square.
*/
func GenerateInput(n int, values, angles Range, dist string, rng *rand.Rand) ([]int, []float64, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}

	var vector []int

	switch dist {
	case DistLinear:
		vector = linspace(n, values)

	case DistRandom:
		vector = make([]int, n)
		for i := range vector {
			vector[i] = int(values.Lo + rng.Float64()*(values.Hi-values.Lo))
		}

	case DistReversing:
		side := int(math.Sqrt(float64(n)))
		if side*side != n {
			return nil, nil, fmt.Errorf("%w: reversing distribution needs a perfect square, got %d", ErrInvalidSize, n)
		}
		line := linspace(n, values)
		vector = make([]int, 0, n)
		for row := 0; row < side; row++ {
			if row%2 == 0 {
				vector = append(vector, line[row*side:row*side+side]...)
			} else {
				for col := side - 1; col >= 0; col-- {
					vector = append(vector, line[row*side+col])
				}
			}
		}

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidDistribution, dist)
	}

	angleVec := make([]float64, n)
	for i, v := range vector {
		angleVec[i] = Interp(float64(v), values, angles)
	}

	return vector, angleVec, nil
}

// linspace spreads n integer values evenly across r, endpoints inclusive.
func linspace(n int, r Range) []int {
	out := make([]int, n)
	if n == 1 {
		out[0] = int(r.Lo)
		return out
	}
	step := (r.Hi - r.Lo) / float64(n-1)
	for i := range out {
		out[i] = int(math.Round(r.Lo + float64(i)*step))
	}
	return out
}
