package qbench

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestGenerateInput(t *testing.T) {
	Convey("Given the input generator", t, func() {
		angles := Range{Lo: 0, Hi: math.Pi}

		Convey("The linear distribution spreads values evenly", func() {
			vector, angleVec, err := GenerateInput(5, PixelRange, angles, DistLinear, testRNG())

			So(err, ShouldBeNil)
			So(vector, ShouldResemble, []int{0, 64, 128, 191, 255})
			So(angleVec[0], ShouldEqual, 0)
			So(angleVec[4], ShouldEqual, math.Pi)
		})

		Convey("The random distribution stays inside the value range", func() {
			vector, angleVec, err := GenerateInput(64, PixelRange, angles, DistRandom, testRNG())

			So(err, ShouldBeNil)
			So(len(vector), ShouldEqual, 64)
			So(len(angleVec), ShouldEqual, 64)
			for i, v := range vector {
				So(v, ShouldBeBetweenOrEqual, 0, 255)
				So(angleVec[i], ShouldBeBetweenOrEqual, 0, math.Pi)
			}
		})

		Convey("The random distribution is reproducible under a fixed seed", func() {
			a, _, err := GenerateInput(16, PixelRange, angles, DistRandom, testRNG())
			So(err, ShouldBeNil)
			b, _, err := GenerateInput(16, PixelRange, angles, DistRandom, testRNG())
			So(err, ShouldBeNil)
			So(a, ShouldResemble, b)
		})

		Convey("The reversing distribution flips every other row", func() {
			vector, _, err := GenerateInput(16, PixelRange, angles, DistReversing, testRNG())

			So(err, ShouldBeNil)
			So(vector, ShouldResemble, []int{
				0, 17, 34, 51,
				119, 102, 85, 68,
				136, 153, 170, 187,
				255, 238, 221, 204,
			})
		})

		Convey("The reversing distribution rejects non-square sizes", func() {
			_, _, err := GenerateInput(12, PixelRange, angles, DistReversing, testRNG())
			So(errors.Is(err, ErrInvalidSize), ShouldBeTrue)
		})

		Convey("A non-positive size is rejected", func() {
			_, _, err := GenerateInput(0, PixelRange, angles, DistLinear, testRNG())
			So(errors.Is(err, ErrInvalidSize), ShouldBeTrue)
		})

		Convey("An unknown distribution is rejected", func() {
			_, _, err := GenerateInput(4, PixelRange, angles, "zigzag", testRNG())
			So(errors.Is(err, ErrInvalidDistribution), ShouldBeTrue)
		})
	})
}

func TestInterp(t *testing.T) {
	Convey("Given the range interpolator", t, func() {
		from := Range{Lo: 0, Hi: 255}
		to := Range{Lo: 0, Hi: math.Pi}

		Convey("Endpoints map to endpoints", func() {
			So(Interp(0, from, to), ShouldEqual, 0)
			So(Interp(255, from, to), ShouldEqual, math.Pi)
		})

		Convey("Out of range values clamp", func() {
			So(Interp(-1, from, to), ShouldEqual, 0)
			So(Interp(300, from, to), ShouldEqual, math.Pi)
		})

		Convey("The midpoint maps to the midpoint", func() {
			So(Interp(127.5, from, to), ShouldAlmostEqual, math.Pi/2, 1e-12)
		})

		Convey("Mapping back recovers the value", func() {
			theta := Interp(100, from, to)
			So(Interp(theta, to, from), ShouldAlmostEqual, 100, 1e-9)
		})
	})
}
