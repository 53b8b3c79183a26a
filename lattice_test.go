package qbench

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLatticeEncoder(t *testing.T) {
	Convey("Given the lattice encoder", t, func() {
		enc := &latticeEncoder{}

		Convey("Encoding uses one qubit and one rotation per pixel", func() {
			c, err := enc.Encode([]float64{0.1, 0.2, 0.3})
			So(err, ShouldBeNil)
			So(c.Width(), ShouldEqual, 3)
			So(c.CountOps()["ry"], ShouldEqual, 3)
			So(c.Entangling(), ShouldBeFalse)
		})

		Convey("Inverting adds one flip per qubit", func() {
			c, err := enc.Encode([]float64{0.1, 0.2})
			So(err, ShouldBeNil)
			enc.InvertPixels(c)
			So(c.CountOps()["x"], ShouldEqual, 2)
		})

		Convey("An empty angle vector is rejected", func() {
			_, err := enc.Encode(nil)
			So(errors.Is(err, ErrInvalidSize), ShouldBeTrue)
		})
	})
}

func TestLatticeRoundTrip(t *testing.T) {
	Convey("Given the lattice scheme end to end", t, func() {
		scheme, err := NewScheme(SchemeQubitLattice)
		So(err, ShouldBeNil)

		Convey("A sampled reconstruction complements the input", func() {
			original, angles := schemeInput(scheme, 9)
			score := roundTrip(scheme, original, angles, 1000000)
			So(score, ShouldBeGreaterThanOrEqualTo, 0.99)
		})
	})
}

func TestIndependentDecode(t *testing.T) {
	Convey("Given the per-qubit marginal decoder", t, func() {
		values := PixelRange
		angles := Range{Lo: 0, Hi: math.Pi}

		Convey("Exact marginals invert exactly", func() {
			// Qubit 0 always one (theta = pi -> 255), qubit 1 always
			// zero (theta = 0 -> 0).
			counts := FrequencyCounts{"10": 1000}
			out, err := decodeIndependent(counts, 2, values, angles)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []int{255, 0})
		})

		Convey("A half-and-half marginal lands on the midpoint", func() {
			counts := FrequencyCounts{"1": 500, "0": 500}
			out, err := decodeIndependent(counts, 1, values, angles)
			So(err, ShouldBeNil)
			// p = 0.5 -> theta = pi/2 -> 127.5, rounded.
			So(out[0], ShouldBeIn, []int{127, 128})
		})

		Convey("Zero observed shots fall back to the midpoint", func() {
			out, err := decodeIndependent(FrequencyCounts{}, 3, values, angles)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, []int{128, 128, 128})
		})

		Convey("A wrong key width is rejected", func() {
			counts := FrequencyCounts{"101": 10}
			_, err := decodeIndependent(counts, 2, values, angles)
			So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
		})
	})
}
