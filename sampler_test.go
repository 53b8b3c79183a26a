package qbench

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func compileForTest(c *Circuit) *CompiledCircuit {
	cc, err := NewCompiler(1).Compile(c, ProfileIdeal)
	So(err, ShouldBeNil)
	return cc
}

func TestSamplerProductPath(t *testing.T) {
	Convey("Given a noiseless sampler on product circuits", t, func() {
		sampler := NewSampler(42, 0)

		Convey("A full rotation always reads one", func() {
			c := NewCircuit()
			c.RY(math.Pi, 0)
			c.Measure(0)

			counts, err := sampler.Run(compileForTest(c), 1000)
			So(err, ShouldBeNil)
			So(counts["1"], ShouldEqual, 1000)
		})

		Convey("A Hadamard reads one about half the time", func() {
			c := NewCircuit()
			c.H(0)
			c.Measure(0)

			counts, err := sampler.Run(compileForTest(c), 20000)
			So(err, ShouldBeNil)
			So(counts.Total(), ShouldEqual, 20000)

			ratio := float64(counts["1"]) / float64(counts.Total())
			So(ratio, ShouldBeBetween, 0.45, 0.55)
		})

		Convey("An interference block reproduces the rotation statistics", func() {
			// H P(theta) H reads one with probability sin^2(theta/2),
			// the same marginal as RY(theta).
			theta := math.Pi / 3
			c := NewCircuit()
			c.H(0)
			c.P(theta, 0)
			c.H(0)
			c.Measure(0)

			counts, err := sampler.Run(compileForTest(c), 200000)
			So(err, ShouldBeNil)

			want := math.Pow(math.Sin(theta/2), 2)
			got := float64(counts["1"]) / float64(counts.Total())
			So(got, ShouldAlmostEqual, want, 0.01)
		})

		Convey("Counts keys put qubit zero leftmost", func() {
			c := NewCircuit()
			c.RY(math.Pi, 0)
			c.Measure(0, 1)

			counts, err := sampler.Run(compileForTest(c), 100)
			So(err, ShouldBeNil)
			So(counts["10"], ShouldEqual, 100)
		})

		Convey("A circuit without measurements is rejected", func() {
			c := NewCircuit()
			c.H(0)

			_, err := sampler.Run(compileForTest(c), 100)
			So(err, ShouldNotBeNil)
		})

		Convey("A non-positive shot budget is rejected", func() {
			c := NewCircuit()
			c.H(0)
			c.Measure(0)

			_, err := sampler.Run(compileForTest(c), 0)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSamplerStatevectorPath(t *testing.T) {
	Convey("Given a noiseless sampler on entangling circuits", t, func() {
		sampler := NewSampler(42, 0)

		Convey("A controlled rotation produces correlated outcomes", func() {
			// H then a full controlled rotation builds (|00> + |11>)/sqrt(2):
			// only the two correlated patterns appear.
			c := NewCircuit()
			c.H(0)
			c.CRY(math.Pi, []int{0}, 1, 1)
			c.MeasureAll()

			counts, err := sampler.Run(compileForTest(c), 20000)
			So(err, ShouldBeNil)
			So(counts.Total(), ShouldEqual, 20000)
			So(counts["01"], ShouldEqual, 0)
			So(counts["10"], ShouldEqual, 0)

			ratio := float64(counts["11"]) / float64(counts.Total())
			So(ratio, ShouldBeBetween, 0.45, 0.55)
		})

		Convey("A zero-pattern control fires on the zero state", func() {
			c := NewCircuit()
			c.CRY(math.Pi, []int{0}, 0, 1)
			c.MeasureAll()

			counts, err := sampler.Run(compileForTest(c), 1000)
			So(err, ShouldBeNil)
			So(counts["01"], ShouldEqual, 1000)
		})

		Convey("Widths beyond the statevector limit are rejected", func() {
			c := NewCircuit()
			c.CRY(1, []int{0}, 1, 30)
			c.MeasureAll()

			_, err := sampler.Run(compileForTest(c), 100)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSamplerNoise(t *testing.T) {
	Convey("Given a noisy sampler", t, func() {
		Convey("Read-out flips corrupt a deterministic outcome", func() {
			sampler := NewSampler(42, 0.2)

			c := NewCircuit()
			c.RY(math.Pi, 0)
			c.Measure(0)

			counts, err := sampler.Run(compileForTest(c), 10000)
			So(err, ShouldBeNil)
			So(counts["0"], ShouldBeGreaterThan, 0)

			ratio := float64(counts["0"]) / float64(counts.Total())
			So(ratio, ShouldBeBetween, 0.15, 0.25)
		})

		Convey("Dropped shots lower the observed total", func() {
			sampler := NewSampler(42, 0.5)

			c := NewCircuit()
			c.H(0)
			c.Measure(0)

			counts, err := sampler.Run(compileForTest(c), 10000)
			So(err, ShouldBeNil)
			So(counts.Total(), ShouldBeLessThan, 10000)
		})
	})
}
