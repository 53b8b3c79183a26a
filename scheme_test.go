package qbench

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewScheme(t *testing.T) {
	Convey("Given the scheme registry", t, func() {
		Convey("Each identifier selects a complete capability pair", func() {
			for _, id := range []SchemeID{SchemeQubitLattice, SchemePhase, SchemeFRQI} {
				scheme, err := NewScheme(id)
				So(err, ShouldBeNil)
				So(scheme.Encoder, ShouldNotBeNil)
				So(scheme.Decoder, ShouldNotBeNil)
				So(len(scheme.Sizes), ShouldBeGreaterThan, 0)
			}
		})

		Convey("The FRQI angle range is half the lattice range", func() {
			lattice, err := NewScheme(SchemeQubitLattice)
			So(err, ShouldBeNil)
			frqi, err := NewScheme(SchemeFRQI)
			So(err, ShouldBeNil)

			So(lattice.AngleRange.Hi, ShouldEqual, math.Pi)
			So(frqi.AngleRange.Hi, ShouldEqual, math.Pi/2)
		})

		Convey("An unknown identifier is rejected", func() {
			_, err := NewScheme(SchemeID("amplitude"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSizeLadders(t *testing.T) {
	Convey("Given the size ladders", t, func() {
		Convey("SquareSizes yields perfect squares", func() {
			So(SquareSizes(5), ShouldResemble, []int{4, 9, 16, 25, 36})
		})

		Convey("PowerSizes yields powers of four", func() {
			So(PowerSizes(4), ShouldResemble, []int{4, 16, 64, 256})
		})
	})
}

// roundTrip runs the full pipeline for one scheme and input vector and
// returns the accuracy against the original.
func roundTrip(scheme *Scheme, original []int, angles []float64, shots int) float64 {
	circuit, err := scheme.Encoder.Encode(angles)
	So(err, ShouldBeNil)
	scheme.Encoder.InvertPixels(circuit)
	scheme.Encoder.AddMeasurements(circuit)

	cc, err := NewCompiler(1).Compile(circuit, ProfileIdeal)
	So(err, ShouldBeNil)

	counts, err := NewSampler(42, 0).Run(cc, shots)
	So(err, ShouldBeNil)

	reconstructed, err := scheme.Decoder.Decode(counts, len(original), shots)
	So(err, ShouldBeNil)

	score, err := Accuracy(original, reconstructed, PixelRange)
	So(err, ShouldBeNil)
	return score
}

func schemeInput(scheme *Scheme, n int) ([]int, []float64) {
	original, angles, err := GenerateInput(n, PixelRange, scheme.AngleRange, DistLinear, testRNG())
	So(err, ShouldBeNil)
	return original, angles
}
