package qbench

import (
	"fmt"
	"math"
	"strings"
)

/*
FRQI encoding: log2(n) address qubits in uniform superposition plus one
color qubit, the pixel angle written by a controlled rotation per address
pattern. The state entangles position and color, so sampling runs on the
statevector path; the payoff is exponentially fewer qubits than the
lattice.
*/
type frqiEncoder struct{}

// addressWidth returns log2(n), requiring n to be a power of four so the
// square image side fits a whole number of address qubits.
func addressWidth(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	a := 0
	for v := n; v > 1; v >>= 1 {
		if v&1 != 0 {
			return 0, fmt.Errorf("%w: FRQI needs a power of four, got %d", ErrInvalidSize, n)
		}
		a++
	}
	if a%2 != 0 {
		return 0, fmt.Errorf("%w: FRQI needs a power of four, got %d", ErrInvalidSize, n)
	}
	return a, nil
}

func (e *frqiEncoder) Encode(angles []float64) (*Circuit, error) {
	n := len(angles)
	a, err := addressWidth(n)
	if err != nil {
		return nil, err
	}

	c := NewCircuit()
	controls := make([]int, a)
	for q := 0; q < a; q++ {
		c.H(q)
		controls[q] = q
	}
	color := a

	for i, theta := range angles {
		// The doubled angle keeps the color amplitude at cos/sin of
		// the pixel angle itself.
		c.CRY(2*theta, controls, uint64(i), color)
	}
	return c, nil
}

// InvertPixels flips the color qubit, complementing every pixel angle to
// pi/2-theta.
func (e *frqiEncoder) InvertPixels(c *Circuit) {
	c.X(c.Width() - 1)
}

func (e *frqiEncoder) AddMeasurements(c *Circuit) {
	c.MeasureAll()
}

// frqiDecoder groups counts by address pattern and recovers each pixel
// from the conditional color distribution.
type frqiDecoder struct {
	values Range
	angles Range
}

func (d *frqiDecoder) Decode(counts FrequencyCounts, n, shots int) ([]int, error) {
	a, err := addressWidth(n)
	if err != nil {
		return nil, err
	}
	width := a + 1

	// Conditional tallies per address: [i][0] color-0, [i][1] color-1.
	tally := make([][2]int, n)
	for key, c := range counts {
		if len(key) != width {
			return nil, fmt.Errorf("%w: counts key width %d, expected %d", ErrDimensionMismatch, len(key), width)
		}
		addr := 0
		for j := 0; j < a; j++ {
			if key[j] == '1' {
				addr |= 1 << j
			}
		}
		if addr >= n {
			continue
		}
		if key[a] == '1' {
			tally[addr][1] += c
		} else {
			tally[addr][0] += c
		}
	}

	out := make([]int, n)
	for i := range out {
		total := tally[i][0] + tally[i][1]
		if total == 0 {
			// This address never showed up in the shot budget. The
			// inverse mapping has no information here; report the
			// midpoint instead of failing.
			out[i] = int(math.Round(d.values.Mid()))
			continue
		}
		p := float64(tally[i][1]) / float64(total)
		theta := math.Asin(math.Sqrt(clamp01(p)))
		out[i] = int(math.Round(Interp(theta, d.angles, d.values)))
	}
	return out, nil
}

// addressKey renders the counts-key prefix for address i, useful in tests.
func addressKey(i, a int) string {
	var b strings.Builder
	for j := 0; j < a; j++ {
		if i>>j&1 == 1 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
