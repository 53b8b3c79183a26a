package qbench

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPhaseEncoder(t *testing.T) {
	Convey("Given the phase encoder", t, func() {
		enc := &phaseEncoder{}

		Convey("Each pixel becomes an interference block", func() {
			c, err := enc.Encode([]float64{0.1, 0.2, 0.3})
			So(err, ShouldBeNil)
			So(c.Width(), ShouldEqual, 3)

			ops := c.CountOps()
			So(ops["h"], ShouldEqual, 6)
			So(ops["p"], ShouldEqual, 3)
			So(c.Entangling(), ShouldBeFalse)
		})

		Convey("An empty angle vector is rejected", func() {
			_, err := enc.Encode(nil)
			So(errors.Is(err, ErrInvalidSize), ShouldBeTrue)
		})
	})
}

func TestPhaseRoundTrip(t *testing.T) {
	Convey("Given the phase scheme end to end", t, func() {
		scheme, err := NewScheme(SchemePhase)
		So(err, ShouldBeNil)

		Convey("A sampled reconstruction complements the input", func() {
			original, angles := schemeInput(scheme, 9)
			score := roundTrip(scheme, original, angles, 1000000)
			So(score, ShouldBeGreaterThanOrEqualTo, 0.99)
		})
	})
}
