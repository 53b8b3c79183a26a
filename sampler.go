package qbench

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"sort"
	"time"
)

// maxStatevectorWidth caps the dense simulation path. Entangling circuits
// beyond this width cannot be sampled locally.
const maxStatevectorWidth = 26

// qubitState holds the |0> and |1> amplitudes of a single qubit. Product
// circuits never mix qubits, so one pair per qubit is the whole state.
type qubitState struct {
	alpha complex128 // |0> amplitude
	beta  complex128 // |1> amplitude
}

func (q *qubitState) applyH() {
	inv := complex(1/math.Sqrt2, 0)
	a := (q.alpha + q.beta) * inv
	b := (q.alpha - q.beta) * inv
	q.alpha, q.beta = a, b
}

func (q *qubitState) applyX() {
	q.alpha, q.beta = q.beta, q.alpha
}

func (q *qubitState) applyRY(theta float64) {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	a := c*q.alpha - s*q.beta
	b := s*q.alpha + c*q.beta
	q.alpha, q.beta = a, b
}

func (q *qubitState) applyP(theta float64) {
	q.beta *= cmplx.Exp(complex(0, theta))
}

func (q *qubitState) probOne() float64 {
	m := cmplx.Abs(q.beta)
	return m * m
}

// Sampler draws shot samples from a compiled circuit's output
// distribution. A noise probability above zero flips each read-out bit
// independently and occasionally drops a whole shot, which is what the
// decoders must tolerate.
type Sampler struct {
	rng   *rand.Rand
	noise float64
}

func NewSampler(seed int64, noise float64) *Sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Sampler{
		rng:   rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)),
		noise: noise,
	}
}

// Run executes the circuit for the given shot budget and returns the
// frequency counts. The sum of counts can fall below the budget when noise
// drops shots.
func (s *Sampler) Run(cc *CompiledCircuit, shots int) (FrequencyCounts, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("shot budget must be positive, got %d", shots)
	}
	measured := cc.Measured()
	if len(measured) == 0 {
		return nil, fmt.Errorf("circuit has no measurements")
	}

	if cc.Entangling() {
		return s.runStatevector(cc, measured, shots)
	}
	return s.runProduct(cc, measured, shots)
}

// runProduct evolves each qubit's amplitude pair independently and samples
// the measured bits as independent Bernoulli draws.
func (s *Sampler) runProduct(cc *CompiledCircuit, measured []int, shots int) (FrequencyCounts, error) {
	states := make([]qubitState, cc.Width())
	for i := range states {
		states[i].alpha = 1
	}

	for _, g := range cc.Gates() {
		switch g.Kind {
		case GateH:
			states[g.Target].applyH()
		case GateX:
			states[g.Target].applyX()
		case GateRY:
			states[g.Target].applyRY(g.Theta)
		case GateP:
			states[g.Target].applyP(g.Theta)
		case GateMeasure:
		case GateCRY:
			return nil, fmt.Errorf("entangling gate on product path")
		}
	}

	probs := make([]float64, len(measured))
	for i, q := range measured {
		probs[i] = states[q].probOne()
	}

	counts := make(FrequencyCounts)
	key := make([]byte, len(measured))
	for shot := 0; shot < shots; shot++ {
		if s.dropShot() {
			continue
		}
		for i := range measured {
			bit := s.rng.Float64() < probs[i]
			if s.flipBit() {
				bit = !bit
			}
			if bit {
				key[i] = '1'
			} else {
				key[i] = '0'
			}
		}
		counts[string(key)]++
	}
	return counts, nil
}

// runStatevector builds the dense amplitude vector and draws outcomes from
// the cumulative distribution.
func (s *Sampler) runStatevector(cc *CompiledCircuit, measured []int, shots int) (FrequencyCounts, error) {
	w := cc.Width()
	if w > maxStatevectorWidth {
		return nil, fmt.Errorf("entangling circuit of width %d exceeds statevector limit %d", w, maxStatevectorWidth)
	}

	dim := 1 << w
	vec := make([]complex128, dim)
	vec[0] = 1

	for _, g := range cc.Gates() {
		switch g.Kind {
		case GateH:
			applyPairwise(vec, g.Target, func(a, b complex128) (complex128, complex128) {
				inv := complex(1/math.Sqrt2, 0)
				return (a + b) * inv, (a - b) * inv
			})
		case GateX:
			applyPairwise(vec, g.Target, func(a, b complex128) (complex128, complex128) {
				return b, a
			})
		case GateRY:
			c := complex(math.Cos(g.Theta/2), 0)
			sn := complex(math.Sin(g.Theta/2), 0)
			applyPairwise(vec, g.Target, func(a, b complex128) (complex128, complex128) {
				return c*a - sn*b, sn*a + c*b
			})
		case GateP:
			ph := cmplx.Exp(complex(0, g.Theta))
			applyPairwise(vec, g.Target, func(a, b complex128) (complex128, complex128) {
				return a, b * ph
			})
		case GateCRY:
			s.applyCRY(vec, g)
		case GateMeasure:
		}
	}

	// Cumulative distribution over basis states, sampled by binary
	// search per shot.
	cum := make([]float64, dim)
	total := 0.0
	for i, amp := range vec {
		m := cmplx.Abs(amp)
		total += m * m
		cum[i] = total
	}
	if total <= 0 {
		return nil, fmt.Errorf("degenerate statevector")
	}

	counts := make(FrequencyCounts)
	key := make([]byte, len(measured))
	for shot := 0; shot < shots; shot++ {
		if s.dropShot() {
			continue
		}
		r := s.rng.Float64() * total
		idx := sort.SearchFloat64s(cum, r)
		if idx >= dim {
			idx = dim - 1
		}
		for i, q := range measured {
			bit := idx>>q&1 == 1
			if s.flipBit() {
				bit = !bit
			}
			if bit {
				key[i] = '1'
			} else {
				key[i] = '0'
			}
		}
		counts[string(key)]++
	}
	return counts, nil
}

// applyCRY rotates the target amplitude pair on every basis state whose
// control bits match the gate's pattern.
func (s *Sampler) applyCRY(vec []complex128, g Gate) {
	c := complex(math.Cos(g.Theta/2), 0)
	sn := complex(math.Sin(g.Theta/2), 0)
	mask := 1 << g.Target
	for i := range vec {
		if i&mask != 0 {
			continue
		}
		if !controlsMatch(i, g) {
			continue
		}
		j := i | mask
		a, b := vec[i], vec[j]
		vec[i] = c*a - sn*b
		vec[j] = sn*a + c*b
	}
}

func controlsMatch(i int, g Gate) bool {
	for bit, q := range g.Controls {
		want := g.Pattern>>bit&1 == 1
		got := i>>q&1 == 1
		if want != got {
			return false
		}
	}
	return true
}

// applyPairwise runs a 2x2 transform on every amplitude pair split by the
// target qubit.
func applyPairwise(vec []complex128, target int, f func(a, b complex128) (complex128, complex128)) {
	mask := 1 << target
	for i := range vec {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		vec[i], vec[j] = f(vec[i], vec[j])
	}
}

func (s *Sampler) flipBit() bool {
	return s.noise > 0 && s.rng.Float64() < s.noise
}

func (s *Sampler) dropShot() bool {
	return s.noise > 0 && s.rng.Float64() < s.noise/10
}
