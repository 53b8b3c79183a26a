package qbench

import (
	"fmt"
	"math"
)

/*
Qubit lattice encoding: one qubit per pixel, the pixel angle written as an
RY rotation so that the measured one-probability is sin^2(theta/2). The
lattice stays a product state, which keeps arbitrarily large images
executable on the product-state sampler.
*/
type latticeEncoder struct{}

func (e *latticeEncoder) Encode(angles []float64) (*Circuit, error) {
	if len(angles) == 0 {
		return nil, fmt.Errorf("%w: empty angle vector", ErrInvalidSize)
	}
	c := NewCircuit()
	for i, theta := range angles {
		c.RY(theta, i)
	}
	return c, nil
}

// InvertPixels complements every pixel: X swaps the amplitude pair, which
// maps theta to pi-theta and the pixel value v to 255-v.
func (e *latticeEncoder) InvertPixels(c *Circuit) {
	for q := 0; q < c.Width(); q++ {
		c.X(q)
	}
}

func (e *latticeEncoder) AddMeasurements(c *Circuit) {
	c.MeasureAll()
}

// latticeDecoder inverts the per-qubit one-frequency back through the
// angle encoding.
type latticeDecoder struct {
	values Range
	angles Range
}

func (d *latticeDecoder) Decode(counts FrequencyCounts, n, shots int) ([]int, error) {
	return decodeIndependent(counts, n, d.values, d.angles)
}

// decodeIndependent recovers one value per measured qubit from its
// marginal one-frequency: p -> theta = 2*asin(sqrt(p)) -> value. Shared by
// the two product-state schemes, whose bit-grouping rule is identical even
// though their instruction mix is not.
func decodeIndependent(counts FrequencyCounts, n int, values, angles Range) ([]int, error) {
	total := counts.Total()
	out := make([]int, n)

	if total == 0 {
		// Degenerate input: no observed shots at all. Fall back to the
		// midpoint rather than dividing by zero.
		for i := range out {
			out[i] = int(math.Round(values.Mid()))
		}
		return out, nil
	}

	ones := make([]int, n)
	for key, c := range counts {
		if len(key) != n {
			return nil, fmt.Errorf("%w: counts key width %d, expected %d", ErrDimensionMismatch, len(key), n)
		}
		for i := 0; i < n; i++ {
			if key[i] == '1' {
				ones[i] += c
			}
		}
	}

	for i := range out {
		p := float64(ones[i]) / float64(total)
		theta := 2 * math.Asin(math.Sqrt(clamp01(p)))
		out[i] = int(math.Round(Interp(theta, angles, values)))
	}
	return out, nil
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
