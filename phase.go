package qbench

import (
	"fmt"
)

/*
Phase encoding: each pixel qubit carries its angle as a relative phase
between Hadamards, H P(theta) H, so the measured one-probability is again
sin^2(theta/2) but the instruction mix and depth differ from the lattice.
*/
type phaseEncoder struct{}

func (e *phaseEncoder) Encode(angles []float64) (*Circuit, error) {
	if len(angles) == 0 {
		return nil, fmt.Errorf("%w: empty angle vector", ErrInvalidSize)
	}
	c := NewCircuit()
	for i, theta := range angles {
		c.H(i)
		c.P(theta, i)
		c.H(i)
	}
	return c, nil
}

// InvertPixels complements the pixel values. After the interference block
// an X swaps the outcome probabilities, taking theta to pi-theta.
func (e *phaseEncoder) InvertPixels(c *Circuit) {
	for q := 0; q < c.Width(); q++ {
		c.X(q)
	}
}

func (e *phaseEncoder) AddMeasurements(c *Circuit) {
	c.MeasureAll()
}

type phaseDecoder struct {
	values Range
	angles Range
}

func (d *phaseDecoder) Decode(counts FrequencyCounts, n, shots int) ([]int, error) {
	return decodeIndependent(counts, n, d.values, d.angles)
}
