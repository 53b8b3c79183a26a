package qbench

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Profile selects the compilation target.
type Profile string

const (
	ProfileIdeal    Profile = "ideal"
	ProfileNoisy    Profile = "noisy"
	ProfileHardware Profile = "hardware"
)

// CompiledCircuit is the execution-ready representation: the semantic gate
// list (what the sampler runs) plus the statistics of its lowering into the
// {u, cx} basis. Immutable once produced: the underlying circuit is not
// reachable and every accessor hands out copies.
type CompiledCircuit struct {
	circuit    *Circuit
	profile    Profile
	basisOps   map[string]int
	basisDepth int
}

func (cc *CompiledCircuit) Profile() Profile { return cc.profile }

func (cc *CompiledCircuit) Width() int { return cc.circuit.Width() }

func (cc *CompiledCircuit) Depth() int { return cc.circuit.Depth() }

func (cc *CompiledCircuit) Entangling() bool { return cc.circuit.Entangling() }

func (cc *CompiledCircuit) Measured() []int { return cc.circuit.Measured() }

func (cc *CompiledCircuit) CountOps() map[string]int { return cc.circuit.CountOps() }

// Gates returns a copy of the instruction list.
func (cc *CompiledCircuit) Gates() []Gate {
	out := make([]Gate, len(cc.circuit.gates))
	copy(out, cc.circuit.gates)
	return out
}

// BasisOps reports the instruction mix after lowering. The map is a copy.
func (cc *CompiledCircuit) BasisOps() map[string]int {
	out := make(map[string]int, len(cc.basisOps))
	for k, v := range cc.basisOps {
		out[k] = v
	}
	return out
}

// BasisDepth is the depth estimate of the lowered form, generally
// different from the pre-compilation depth.
func (cc *CompiledCircuit) BasisDepth() int { return cc.basisDepth }

// Compiler lowers encoded circuits under a target profile. For the ideal
// and noisy profiles the output depends only on the circuit, profile and
// pinned seed; the hardware profile adds routing overhead that varies
// run to run.
type Compiler struct {
	seed int64
}

func NewCompiler(seed int64) *Compiler {
	return &Compiler{seed: seed}
}

func (t *Compiler) Compile(c *Circuit, profile Profile) (*CompiledCircuit, error) {
	switch profile {
	case ProfileIdeal, ProfileNoisy, ProfileHardware:
	default:
		return nil, &CompileError{Profile: profile, Err: fmt.Errorf("unknown profile")}
	}
	if c.Width() == 0 {
		return nil, &CompileError{Profile: profile, Err: fmt.Errorf("empty circuit")}
	}

	optimized := mergeRotations(c)

	basisOps := make(map[string]int)
	basisDepth := 0
	for _, g := range optimized.Gates() {
		switch g.Kind {
		case GateH, GateX, GateRY, GateP:
			basisOps["u"]++
			basisDepth++
		case GateCRY:
			// Standard multi-controlled rotation decomposition: a
			// k-control rotation costs 2*(2^k-1) CX and 2^k single
			// qubit rotations.
			k := len(g.Controls)
			cx := 2 * ((1 << k) - 1)
			basisOps["cx"] += cx
			basisOps["u"] += 1 << k
			basisDepth += cx + 1<<k
		case GateMeasure:
			basisOps["measure"]++
		}
	}

	if profile == ProfileHardware {
		// Routing to a fixed coupling map inserts swaps; the exact
		// count depends on the queue-assigned device, so it jitters.
		rng := rand.New(rand.NewPCG(uint64(t.seed), uint64(time.Now().UnixNano())))
		swaps := basisOps["cx"] / 4
		if swaps > 0 {
			swaps += rng.IntN(swaps + 1)
		}
		basisOps["cx"] += 3 * swaps
		basisDepth += 3 * swaps
	}

	// Parallelism across disjoint qubits shortens the critical path in
	// the same proportion as the semantic form.
	if d := optimized.Depth(); len(optimized.Gates()) > 0 && d > 0 {
		basisDepth = int(math.Ceil(float64(basisDepth) * float64(d) / float64(len(optimized.Gates()))))
	}

	return &CompiledCircuit{
		circuit:    optimized,
		profile:    profile,
		basisOps:   basisOps,
		basisDepth: basisDepth,
	}, nil
}

// mergeRotations folds runs of same-kind rotations on the same target into
// a single gate. Deterministic: gate order is preserved.
func mergeRotations(c *Circuit) *Circuit {
	out := NewCircuit()
	gates := c.Gates()
	for i := 0; i < len(gates); i++ {
		g := gates[i]
		if g.Kind == GateRY || g.Kind == GateP {
			theta := g.Theta
			for i+1 < len(gates) && gates[i+1].Kind == g.Kind && gates[i+1].Target == g.Target {
				theta += gates[i+1].Theta
				i++
			}
			merged := g
			merged.Theta = theta
			out.append(merged)
			continue
		}
		out.append(g)
	}
	// Preserve register width even if trailing qubits are idle.
	if out.width < c.width {
		out.width = c.width
	}
	return out
}
