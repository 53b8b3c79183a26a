package qbench

import (
	"fmt"
	"math"
)

// FrequencyCounts is the empirical histogram of measured bit patterns over
// a shot budget. Keys are fixed-width bit strings, one character per
// measured qubit, qubit 0 leftmost. The sum of counts may be below the
// requested budget when shots were dropped; consumers tolerate that.
type FrequencyCounts map[string]int

// Total returns the number of observed shots.
func (fc FrequencyCounts) Total() int {
	sum := 0
	for _, c := range fc {
		sum += c
	}
	return sum
}

// Encoder turns an angle vector into an encoded circuit and owns the two
// follow-up transforms the pipeline applies before compilation.
type Encoder interface {
	// Encode builds the encoded representation from the angle vector.
	Encode(angles []float64) (*Circuit, error)

	// InvertPixels applies the in-place complement transform used to
	// validate decode symmetry.
	InvertPixels(c *Circuit)

	// AddMeasurements appends measurement instrumentation.
	AddMeasurements(c *Circuit)
}

// Decoder reconstructs an estimated sample vector from frequency counts.
// Implementations treat the counts as a stochastic estimator of the true
// measurement distribution and must survive positions with zero counts.
type Decoder interface {
	Decode(counts FrequencyCounts, n, shots int) ([]int, error)
}

// SchemeID tags one of the interchangeable encoding schemes.
type SchemeID string

const (
	SchemeQubitLattice SchemeID = "ql"
	SchemePhase        SchemeID = "phase"
	SchemeFRQI         SchemeID = "frqi"
)

// Scheme bundles an encoder with its matching decoder as a capability
// pair, selected once at pipeline construction. The pipeline never
// branches on the scheme identity after this point.
type Scheme struct {
	ID         SchemeID
	Name       string
	AngleRange Range
	Sizes      []int
	Encoder    Encoder
	Decoder    Decoder
}

// NewScheme selects the capability pair for an identifier.
func NewScheme(id SchemeID) (*Scheme, error) {
	switch id {
	case SchemeQubitLattice:
		angles := Range{Lo: 0, Hi: math.Pi}
		return &Scheme{
			ID:         id,
			Name:       "Qubit Lattice",
			AngleRange: angles,
			Sizes:      SquareSizes(5),
			Encoder:    &latticeEncoder{},
			Decoder:    &latticeDecoder{values: PixelRange, angles: angles},
		}, nil
	case SchemePhase:
		angles := Range{Lo: 0, Hi: math.Pi}
		return &Scheme{
			ID:         id,
			Name:       "Phase",
			AngleRange: angles,
			Sizes:      SquareSizes(5),
			Encoder:    &phaseEncoder{},
			Decoder:    &phaseDecoder{values: PixelRange, angles: angles},
		}, nil
	case SchemeFRQI:
		angles := Range{Lo: 0, Hi: math.Pi / 2}
		return &Scheme{
			ID:         id,
			Name:       "FRQI",
			AngleRange: angles,
			Sizes:      PowerSizes(4),
			Encoder:    &frqiEncoder{},
			Decoder:    &frqiDecoder{values: PixelRange, angles: angles},
		}, nil
	}
	return nil, fmt.Errorf("unknown scheme %q", id)
}

// SquareSizes returns the per-scheme input ladder x^2 for x in 2..k+1,
// one qubit per pixel schemes.
func SquareSizes(k int) []int {
	out := make([]int, 0, k)
	for x := 2; x <= k+1; x++ {
		out = append(out, x*x)
	}
	return out
}

// PowerSizes returns (2^x)^2 for x in 1..k, the sizes whose square side is
// a power of two and therefore fit a whole address register.
func PowerSizes(k int) []int {
	out := make([]int, 0, k)
	for x := 1; x <= k; x++ {
		side := 1 << x
		out = append(out, side*side)
	}
	return out
}
